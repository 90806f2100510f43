package config

import (
	"time"
)

// Config is the top-level configuration structure for tenvctl.
type Config struct {
	// Envlist names the environments run when none are given on the
	// command line, in order.
	Envlist []string `yaml:"envlist,omitempty"`
	// WorkDir is the root directory for per-environment work directories.
	WorkDir string `yaml:"workdir,omitempty"`
	// DistDir is the directory distribution artifacts are written to and
	// the value substituted for the {distdir} placeholder.
	DistDir string `yaml:"distdir,omitempty"`
	// Installer is the command prefix used to install an environment's
	// dependencies, e.g. ["python", "-m", "pip", "install"].
	Installer []string `yaml:"installer,omitempty"`
	// Base holds settings inherited by every environment. Its Name must be
	// empty; a named entry in Environments overrides field by field.
	Base Environment `yaml:"base,omitempty"`
	// Environments are the named test environments.
	Environments []Environment `yaml:"environments,omitempty"`
	// Lint configures the external linter invocation.
	Lint LintConfig `yaml:"lint,omitempty"`
}

// Environment defines a single named, isolated set of dependencies and
// commands.
type Environment struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// BaseEnv optionally names another environment whose settings this one
	// inherits, on top of the implicit Base section.
	BaseEnv string `yaml:"base,omitempty"`
	// Deps are package identifiers, optionally carrying a version
	// specifier, e.g. "pytest" or "coverage>=5.0".
	Deps []string `yaml:"deps,omitempty"`
	// Commands are the argv lists executed in order. Arguments may contain
	// the placeholders {envname}, {posargs}, {workdir}, {distdir} and
	// {env:VAR}.
	Commands [][]string `yaml:"commands,omitempty"`
	// PassEnv lists glob patterns of process environment variables passed
	// through to commands, e.g. "LANG" or "SPLUNK_*".
	PassEnv []string `yaml:"passenv,omitempty"`
	// SetEnv assigns environment variables for commands. Values may use
	// placeholders; SetEnv wins over PassEnv on conflict.
	SetEnv map[string]string `yaml:"setenv,omitempty"`
	// AllowlistExternals names executables that commands may run from
	// outside the environment directory.
	AllowlistExternals []string `yaml:"allowlist_externals,omitempty"`
	// SkipInstall skips the dependency installation step.
	SkipInstall bool `yaml:"skip_install,omitempty"`
	// Timeout bounds the whole environment run when non-zero.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// LintConfig holds the options rendered into the external linter
// invocation.
type LintConfig struct {
	// Linter is the linter command prefix, e.g. ["flake8"].
	Linter []string `yaml:"linter,omitempty"`
	// Exclude lists path globs the linter must skip.
	Exclude []string `yaml:"exclude,omitempty"`
	// EnableExtensions lists optional linter extension codes to enable.
	EnableExtensions []string `yaml:"enable_extensions,omitempty"`
	// ApplicationImportNames lists first-party import names used for
	// import-order checking.
	ApplicationImportNames []string `yaml:"application_import_names,omitempty"`
	// MaxLineLength caps line length when non-zero.
	MaxLineLength int `yaml:"max_line_length,omitempty"`
}

// EnvironmentByName returns the named environment definition, if present.
func (c Config) EnvironmentByName(name string) (Environment, bool) {
	for _, env := range c.Environments {
		if env.Name == name {
			return env, true
		}
	}
	return Environment{}, false
}

// EnvironmentNames returns all environment names in declaration order.
func (c Config) EnvironmentNames() []string {
	names := make([]string, 0, len(c.Environments))
	for _, env := range c.Environments {
		names = append(names, env.Name)
	}
	return names
}
