package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/tenvctl"
	projectConfigDir = ".tenvctl"
	configFileName   = "config.yaml"
)

// Load builds the effective configuration by layering built-in defaults,
// the user config, the project config and finally explicitPath when
// non-empty. Missing user/project files are skipped; a missing explicit
// file is an error.
func Load(explicitPath string) (Config, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not determine user config path: %v\n", err)
	} else if _, err := os.Stat(userConfigPath); !os.IsNotExist(err) {
		userConfig, err := loadConfigFromFile(userConfigPath)
		if err != nil {
			return Config{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
		}
		config = mergeConfigs(config, userConfig)
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not determine project config path: %v\n", err)
	} else if _, err := os.Stat(projectConfigPath); !os.IsNotExist(err) {
		projectConfig, err := loadConfigFromFile(projectConfigPath)
		if err != nil {
			return Config{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
		}
		config = mergeConfigs(config, projectConfig)
	}

	if explicitPath != "" {
		explicitConfig, err := loadConfigFromFile(explicitPath)
		if err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", explicitPath, err)
		}
		config = mergeConfigs(config, explicitConfig)
	}

	if config.DistDir == "" {
		config.DistDir = filepath.Join(config.WorkDir, "dist")
	}

	if err := Validate(config); err != nil {
		return Config{}, err
	}
	return config, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// ProjectConfigPath returns the path the project config layer is read
// from, for display purposes.
func ProjectConfigPath() (string, error) {
	return getProjectConfigPath()
}

// UserConfigPath returns the path the user config layer is read from, for
// display purposes.
func UserConfigPath() (string, error) {
	return getUserConfigPath()
}

func loadConfigFromFile(filePath string) (Config, error) {
	var config Config
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' into 'base'. Scalars overlay when set,
// environments merge by name (overlay replaces whole entries), the envlist
// and lint sections are replaced wholesale when present.
func mergeConfigs(base, overlay Config) Config {
	merged := base

	if len(overlay.Envlist) > 0 {
		merged.Envlist = overlay.Envlist
	}
	if overlay.WorkDir != "" {
		merged.WorkDir = overlay.WorkDir
	}
	if overlay.DistDir != "" {
		merged.DistDir = overlay.DistDir
	}
	if len(overlay.Installer) > 0 {
		merged.Installer = overlay.Installer
	}

	merged.Base = mergeEnvironment(base.Base, overlay.Base)

	// Merge environments by name; overlay entries replace base entries and
	// new names append in overlay order.
	index := make(map[string]int, len(merged.Environments))
	for i, env := range merged.Environments {
		index[env.Name] = i
	}
	for _, env := range overlay.Environments {
		if i, ok := index[env.Name]; ok {
			merged.Environments[i] = env
		} else {
			index[env.Name] = len(merged.Environments)
			merged.Environments = append(merged.Environments, env)
		}
	}

	if len(overlay.Lint.Linter) > 0 {
		merged.Lint.Linter = overlay.Lint.Linter
	}
	if len(overlay.Lint.Exclude) > 0 {
		merged.Lint.Exclude = overlay.Lint.Exclude
	}
	if len(overlay.Lint.EnableExtensions) > 0 {
		merged.Lint.EnableExtensions = overlay.Lint.EnableExtensions
	}
	if len(overlay.Lint.ApplicationImportNames) > 0 {
		merged.Lint.ApplicationImportNames = overlay.Lint.ApplicationImportNames
	}
	if overlay.Lint.MaxLineLength != 0 {
		merged.Lint.MaxLineLength = overlay.Lint.MaxLineLength
	}

	return merged
}

// mergeEnvironment overlays the set fields of overlay onto base. Used for
// the implicit base section only; named environments replace wholesale.
func mergeEnvironment(base, overlay Environment) Environment {
	merged := base
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
		if merged.SetEnv == nil {
			merged.SetEnv = make(map[string]string, len(overlay.SetEnv))
		}
		for k, v := range overlay.SetEnv {
			merged.SetEnv[k] = v
		}
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
