package color

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestDetectProfileRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	p := detectProfile()
	if p.Enabled {
		t.Error("Expected profile to be disabled when NO_COLOR is set")
	}
	if _, ok := p.Success.(lipgloss.NoColor); !ok {
		t.Errorf("Expected NoColor palette when disabled, got %T", p.Success)
	}
}

func TestGetProfileIsStable(t *testing.T) {
	first := GetProfile()
	second := GetProfile()
	if first != second {
		t.Error("Expected GetProfile to return the same profile on every call")
	}
}

func TestStylesRenderWithoutPanic(t *testing.T) {
	for name, style := range map[string]lipgloss.Style{
		"success": SuccessStyle(),
		"failure": FailureStyle(),
		"warning": WarningStyle(),
		"info":    InfoStyle(),
		"muted":   MutedStyle(),
	} {
		if rendered := style.Render(name); rendered == "" {
			t.Errorf("Expected %s style to render text", name)
		}
	}
}
