package config

import (
	"fmt"
	"regexp"
)

var (
	envNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

	// Dependency identifiers follow the packaging-name grammar: a name,
	// optional extras in brackets, optional comma-separated version
	// specifiers, e.g. "pytest", "coverage>=5.0,<6" or
	// "requests[socks]==2.31.0".
	depNameRe = regexp.MustCompile(
		`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?` +
			`(\[[A-Za-z0-9._-]+(,[A-Za-z0-9._-]+)*\])?` +
			`((==|!=|<=|>=|<|>|~=|===)[A-Za-z0-9._*+!-]+` +
			`(,(==|!=|<=|>=|<|>|~=|===)[A-Za-z0-9._*+!-]+)*)?$`)
)

// Validate checks the syntactic properties of a configuration: unique,
// well-formed environment names; well-formed dependency identifiers;
// resolvable, acyclic base references; non-empty commands; and an envlist
// that only names declared environments.
func Validate(c Config) error {
	if c.Base.Name != "" {
		return fmt.Errorf("the base section must not carry a name (got %q)", c.Base.Name)
	}
	if err := validateEnvironmentBody("base", c.Base); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Environments))
	for _, env := range c.Environments {
		if env.Name == "" {
			return fmt.Errorf("environment with empty name")
		}
		if !envNameRe.MatchString(env.Name) {
			return fmt.Errorf("invalid environment name %q", env.Name)
		}
		if _, dup := seen[env.Name]; dup {
			return fmt.Errorf("duplicate environment name %q", env.Name)
		}
		seen[env.Name] = struct{}{}

		if err := validateEnvironmentBody(env.Name, env); err != nil {
			return err
		}
	}

	for _, env := range c.Environments {
		if err := validateBaseChain(c, env); err != nil {
			return err
		}
	}

	for _, name := range c.Envlist {
		if _, ok := seen[name]; !ok {
			return fmt.Errorf("envlist references unknown environment %q", name)
		}
	}

	if len(c.Installer) == 0 {
		return fmt.Errorf("installer command must not be empty")
	}
	return nil
}

func validateEnvironmentBody(name string, env Environment) error {
	for _, dep := range env.Deps {
		if !depNameRe.MatchString(dep) {
			return fmt.Errorf("environment %q: invalid dependency identifier %q", name, dep)
		}
	}
	for i, command := range env.Commands {
		if len(command) == 0 {
			return fmt.Errorf("environment %q: command %d is empty", name, i+1)
		}
		if command[0] == "" {
			return fmt.Errorf("environment %q: command %d has an empty executable", name, i+1)
		}
	}
	return nil
}

// validateBaseChain walks env's base references and rejects unknown names
// and cycles.
func validateBaseChain(c Config, env Environment) error {
	visited := map[string]struct{}{env.Name: {}}
	current := env
	for current.BaseEnv != "" {
		next, ok := c.EnvironmentByName(current.BaseEnv)
		if !ok {
			return fmt.Errorf("environment %q: base environment %q not found", current.Name, current.BaseEnv)
		}
		if _, cycle := visited[next.Name]; cycle {
			return fmt.Errorf("environment %q: base chain forms a cycle", env.Name)
		}
		visited[next.Name] = struct{}{}
		current = next
	}
	return nil
}
