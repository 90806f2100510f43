package envspec

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// For mocking in tests
var osStat = os.Stat

// ErrNotAllowlisted marks commands rejected by the external-executable
// allowlist. Callers branch on it with errors.Is.
var ErrNotAllowlisted = errors.New("executable not allowlisted")

// alwaysPassed are passed to every command regardless of passenv.
var alwaysPassed = []string{"PATH"}

// ComputeEnviron builds the subprocess environment for a resolved
// environment: PATH plus passenv-matched variables from base, then setenv
// assignments (expanded via ctx, winning on conflict), then the tenvctl
// bookkeeping variables.
func (r Resolved) ComputeEnviron(base []string, ctx SubstitutionContext) ([]string, error) {
	passed := make(map[string]string)
	for _, kv := range base {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if matchesAny(name, alwaysPassed) || matchesAny(name, r.PassEnv) {
			passed[name] = value
		}
	}

	for name, raw := range r.SetEnv {
		value, err := ExpandString(raw, ctx)
		if err != nil {
			return nil, fmt.Errorf("setenv %s: %w", name, err)
		}
		passed[name] = value
	}

	passed["TENV_ENV_NAME"] = r.Name
	passed["TENV_ENV_DIR"] = r.EnvDir

	// The environment's bin directory shadows the inherited PATH so that
	// installed dependencies win over system tools.
	binDir := filepath.Join(r.EnvDir, "bin")
	if inherited, ok := passed["PATH"]; ok && inherited != "" {
		passed["PATH"] = binDir + string(os.PathListSeparator) + inherited
	} else {
		passed["PATH"] = binDir
	}

	names := make([]string, 0, len(passed))
	for name := range passed {
		names = append(names, name)
	}
	sort.Strings(names)

	environ := make([]string, 0, len(names))
	for _, name := range names {
		environ = append(environ, name+"="+passed[name])
	}
	return environ, nil
}

// CheckAllowlisted decides whether the command executable may run.
// Executables living inside the environment directory are always allowed,
// as is the configured installer; anything else must match an
// allowlist_externals entry by name or glob.
func (r Resolved) CheckAllowlisted(executable string) error {
	if executable == "" {
		return fmt.Errorf("empty executable")
	}
	if len(r.Installer) > 0 && executable == r.Installer[0] {
		return nil
	}

	if filepath.IsAbs(executable) {
		absEnvDir, err := filepath.Abs(r.EnvDir)
		if err == nil {
			rel, err := filepath.Rel(absEnvDir, executable)
			if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return nil
			}
		}
	}

	// Bare names installed into the environment (its bin directory) are
	// what deps provide; only executables resolved from outside need an
	// allowlist entry.
	if !strings.ContainsRune(executable, filepath.Separator) {
		if _, err := osStat(filepath.Join(r.EnvDir, "bin", executable)); err == nil {
			return nil
		}
	}

	name := filepath.Base(executable)
	if matchesAny(executable, r.AllowlistExternals) || matchesAny(name, r.AllowlistExternals) {
		return nil
	}
	return fmt.Errorf("%w: %q (environment %q allows: %v)", ErrNotAllowlisted, executable, r.Name, r.AllowlistExternals)
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
