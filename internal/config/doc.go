// Package config defines the tenvctl configuration surface and its loader.
//
// Configuration is layered: built-in defaults, then the user config at
// ~/.config/tenvctl/config.yaml, then the project config at
// .tenvctl/config.yaml, then an explicit --config path. Later layers
// override earlier ones; environments merge by name.
//
// The configuration describes a matrix of named test environments (each
// with dependencies to install, commands to run, environment variable
// passthrough and assignment, and an allowlist of external executables)
// plus the options rendered into the external linter invocation. Loading
// always ends in Validate, so callers only ever see configurations whose
// environment names are unique, whose dependency identifiers parse and
// whose base references resolve.
package config
