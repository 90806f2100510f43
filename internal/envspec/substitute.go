package envspec

import (
	"fmt"
	"os"
	"strings"
)

// SubstitutionContext supplies the values placeholders expand to.
type SubstitutionContext struct {
	EnvName string
	EnvDir  string
	DistDir string
	Posargs []string
	// LookupEnv resolves {env:VAR} references; defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

func (c SubstitutionContext) lookupEnv(name string) (string, bool) {
	if c.LookupEnv != nil {
		return c.LookupEnv(name)
	}
	return os.LookupEnv(name)
}

// ExpandCommand expands placeholders in a command argv. An argument that is
// exactly "{posargs}" splices the positional arguments in place (vanishing
// when there are none); embedded {posargs} joins them with spaces.
func ExpandCommand(args []string, ctx SubstitutionContext) ([]string, error) {
	expanded := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "{posargs}" {
			expanded = append(expanded, ctx.Posargs...)
			continue
		}
		s, err := ExpandString(arg, ctx)
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, s)
	}
	return expanded, nil
}

// ExpandString expands all placeholders in s. Unknown placeholders are an
// error rather than being passed through silently.
func ExpandString(s string, ctx SubstitutionContext) (string, error) {
	var out strings.Builder
	rest := s
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			out.WriteString(rest)
			return out.String(), nil
		}
		out.WriteString(rest[:open])
		rest = rest[open:]

		closing := strings.IndexByte(rest, '}')
		if closing < 0 {
			return "", fmt.Errorf("unterminated placeholder in %q", s)
		}
		name := rest[1:closing]
		rest = rest[closing+1:]

		value, err := resolvePlaceholder(name, ctx)
		if err != nil {
			return "", fmt.Errorf("in %q: %w", s, err)
		}
		out.WriteString(value)
	}
}

func resolvePlaceholder(name string, ctx SubstitutionContext) (string, error) {
	switch name {
	case "envname":
		return ctx.EnvName, nil
	case "envdir", "workdir":
		return ctx.EnvDir, nil
	case "distdir":
		return ctx.DistDir, nil
	case "posargs":
		return strings.Join(ctx.Posargs, " "), nil
	}

	if rest, ok := strings.CutPrefix(name, "env:"); ok {
		// {env:VAR} or {env:VAR:default}
		varName, fallback, hasFallback := strings.Cut(rest, ":")
		if varName == "" {
			return "", fmt.Errorf("empty variable name in placeholder {%s}", name)
		}
		if value, ok := ctx.lookupEnv(varName); ok {
			return value, nil
		}
		if hasFallback {
			return fallback, nil
		}
		return "", fmt.Errorf("environment variable %q referenced by {%s} is not set", varName, name)
	}

	return "", fmt.Errorf("unknown placeholder {%s}", name)
}
