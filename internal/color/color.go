// Package color provides terminal color detection and theming for tenvctl.
//
// Colors are organized into semantic categories (success, failure, warning,
// info, muted) so reporters and the TUI render consistently. NO_COLOR and
// non-TTY output disable styling entirely.
package color

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Profile is the semantic color palette used across the application.
type Profile struct {
	Success lipgloss.TerminalColor
	Failure lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Info    lipgloss.TerminalColor
	Muted   lipgloss.TerminalColor

	Enabled bool
}

var (
	profileOnce sync.Once
	profile     Profile
)

// GetProfile returns the process-wide color profile. Detection runs once;
// all callers share the result.
func GetProfile() Profile {
	profileOnce.Do(func() {
		profile = detectProfile()
	})
	return profile
}

func detectProfile() Profile {
	enabled := os.Getenv("NO_COLOR") == "" &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))

	if !enabled {
		return Profile{
			Success: lipgloss.NoColor{},
			Failure: lipgloss.NoColor{},
			Warning: lipgloss.NoColor{},
			Info:    lipgloss.NoColor{},
			Muted:   lipgloss.NoColor{},
		}
	}

	return Profile{
		Success: lipgloss.AdaptiveColor{Light: "28", Dark: "42"},
		Failure: lipgloss.AdaptiveColor{Light: "160", Dark: "196"},
		Warning: lipgloss.AdaptiveColor{Light: "130", Dark: "214"},
		Info:    lipgloss.AdaptiveColor{Light: "25", Dark: "39"},
		Muted:   lipgloss.AdaptiveColor{Light: "245", Dark: "241"},
		Enabled: true,
	}
}

// SuccessStyle returns the style for passed results.
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(GetProfile().Success)
}

// FailureStyle returns the style for failed results.
func FailureStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(GetProfile().Failure).Bold(true)
}

// WarningStyle returns the style for skipped or degraded results.
func WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(GetProfile().Warning)
}

// InfoStyle returns the style for informational output.
func InfoStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(GetProfile().Info)
}

// MutedStyle returns the style for de-emphasized output.
func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(GetProfile().Muted)
}
