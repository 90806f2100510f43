package config

// DefaultWorkDir is the work directory used when the config does not set
// one.
const DefaultWorkDir = ".tenv"

// GetDefaultConfig returns the built-in configuration every load starts
// from. It declares no environments; user and project config layers supply
// those.
func GetDefaultConfig() Config {
	return Config{
		WorkDir:   DefaultWorkDir,
		Installer: []string{"python", "-m", "pip", "install"},
		Lint: LintConfig{
			Linter: []string{"flake8"},
		},
	}
}
