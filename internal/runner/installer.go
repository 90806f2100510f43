package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tenvctl/internal/envspec"
	"tenvctl/internal/executor"
	"tenvctl/pkg/logging"
)

// depsMarkerFile records the dependency set last installed into an
// environment; a matching set skips reinstallation.
const depsMarkerFile = ".tenv-deps"

type depInstaller struct {
	exec executor.Runner

	mu    sync.Mutex
	cache map[string]string // envdir -> installed dep set
}

// NewInstaller returns the default dependency installer. It runs the
// configured installer command and skips environments whose dependency set
// is unchanged since the last run.
func NewInstaller(exec executor.Runner) Installer {
	return &depInstaller{
		exec:  exec,
		cache: make(map[string]string),
	}
}

func (i *depInstaller) Install(ctx context.Context, env envspec.Resolved) ([]string, error) {
	if env.SkipInstall || len(env.Deps) == 0 {
		return nil, nil
	}

	want := strings.Join(env.Deps, "\n")
	if i.installedSet(env.EnvDir) == want {
		logging.Debug("Installer", "environment %q dependencies unchanged, skipping install", env.Name)
		return nil, nil
	}

	argv := make([]string, 0, len(env.Installer)+len(env.Deps))
	argv = append(argv, env.Installer...)
	argv = append(argv, env.Deps...)

	logging.Info("Installer", "installing %d dependencies into environment %q", len(env.Deps), env.Name)
	result, err := i.exec.Run(ctx, executor.Command{Argv: argv, Dir: env.EnvDir})
	if err != nil {
		logging.Debug("Installer", "installer output: %s", result.Stdout)
		return nil, err
	}

	if err := i.rememberInstalledSet(env.EnvDir, want); err != nil {
		// Installation succeeded; a failed marker write only costs a
		// reinstall next run.
		logging.Warn("Installer", "could not record installed set for %q: %v", env.Name, err)
	}
	return env.Deps, nil
}

func (i *depInstaller) installedSet(envDir string) string {
	i.mu.Lock()
	if set, ok := i.cache[envDir]; ok {
		i.mu.Unlock()
		return set
	}
	i.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(envDir, depsMarkerFile))
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(string(data), "\n")
}

func (i *depInstaller) rememberInstalledSet(envDir, set string) error {
	if err := os.WriteFile(filepath.Join(envDir, depsMarkerFile), []byte(set+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", depsMarkerFile, err)
	}
	i.mu.Lock()
	i.cache[envDir] = set
	i.mu.Unlock()
	return nil
}
