// Package envspec turns validated configuration into runnable environment
// specifications: it resolves base-environment inheritance, expands command
// placeholders and computes the subprocess environment and allowlist
// decisions for a single named environment.
package envspec

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"tenvctl/internal/config"
)

// ErrUnknownEnvironment is returned when a requested environment is not
// declared in the configuration.
var ErrUnknownEnvironment = errors.New("unknown environment")

// Resolved is a fully inherited environment specification. Commands and
// SetEnv values still carry placeholders; expansion happens per run via
// SubstitutionContext.
type Resolved struct {
	Name               string
	Description        string
	Deps               []string
	Commands           [][]string
	PassEnv            []string
	SetEnv             map[string]string
	AllowlistExternals []string
	SkipInstall        bool
	Timeout            time.Duration

	// EnvDir is the per-environment work directory,
	// <config workdir>/<name>.
	EnvDir string
	// DistDir is the shared distribution directory.
	DistDir string
	// Installer is the dependency install command prefix.
	Installer []string
}

// Resolve produces the runnable specification for the named environment:
// the implicit base section first, then the base chain root-to-leaf, then
// the environment itself.
func Resolve(cfg config.Config, name string) (Resolved, error) {
	env, ok := cfg.EnvironmentByName(name)
	if !ok {
		return Resolved{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownEnvironment, name, cfg.EnvironmentNames())
	}

	chain := []config.Environment{env}
	current := env
	for current.BaseEnv != "" {
		parent, ok := cfg.EnvironmentByName(current.BaseEnv)
		if !ok {
			// Validate rejects this; guard against unvalidated configs.
			return Resolved{}, fmt.Errorf("environment %q: base environment %q not found", current.Name, current.BaseEnv)
		}
		chain = append([]config.Environment{parent}, chain...)
		current = parent
	}

	merged := cfg.Base
	for _, layer := range chain {
		merged = overlayEnvironment(merged, layer)
	}

	resolved := Resolved{
		Name:               name,
		Description:        merged.Description,
		Deps:               merged.Deps,
		Commands:           merged.Commands,
		PassEnv:            merged.PassEnv,
		SetEnv:             merged.SetEnv,
		AllowlistExternals: merged.AllowlistExternals,
		SkipInstall:        merged.SkipInstall,
		Timeout:            merged.Timeout,
		EnvDir:             filepath.Join(cfg.WorkDir, name),
		DistDir:            cfg.DistDir,
		Installer:          cfg.Installer,
	}
	return resolved, nil
}

// ResolveSelection maps names (CLI args, TENV_ENV, or envlist) to resolved
// environments, preserving order.
func ResolveSelection(cfg config.Config, names []string) ([]Resolved, error) {
	resolved := make([]Resolved, 0, len(names))
	for _, name := range names {
		r, err := Resolve(cfg, name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, r)
	}
	return resolved, nil
}

func overlayEnvironment(base, overlay config.Environment) config.Environment {
	merged := base
	merged.Name = overlay.Name
	merged.BaseEnv = overlay.BaseEnv
	if overlay.Description != "" {
		merged.Description = overlay.Description
	}
	if len(overlay.Deps) > 0 {
		merged.Deps = overlay.Deps
	}
	if len(overlay.Commands) > 0 {
		merged.Commands = overlay.Commands
	}
	if len(overlay.PassEnv) > 0 {
		merged.PassEnv = overlay.PassEnv
	}
	if len(overlay.SetEnv) > 0 {
		combined := make(map[string]string, len(base.SetEnv)+len(overlay.SetEnv))
		for k, v := range base.SetEnv {
			combined[k] = v
		}
		for k, v := range overlay.SetEnv {
			combined[k] = v
		}
		merged.SetEnv = combined
	}
	if len(overlay.AllowlistExternals) > 0 {
		merged.AllowlistExternals = overlay.AllowlistExternals
	}
	if overlay.SkipInstall {
		merged.SkipInstall = true
	}
	if overlay.Timeout != 0 {
		merged.Timeout = overlay.Timeout
	}
	return merged
}
