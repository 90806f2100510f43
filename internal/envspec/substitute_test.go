package envspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subCtx() SubstitutionContext {
	return SubstitutionContext{
		EnvName: "unit",
		EnvDir:  ".tenv/unit",
		DistDir: ".tenv/dist",
		Posargs: []string{"-k", "smoke"},
		LookupEnv: func(name string) (string, bool) {
			if name == "HOME" {
				return "/home/tester", true
			}
			return "", false
		},
	}
}

func TestExpandString(t *testing.T) {
	cases := map[string]string{
		"plain":                    "plain",
		"{envname}":                "unit",
		"{workdir}/.coverage":      ".tenv/unit/.coverage",
		"{envdir}/bin":             ".tenv/unit/bin",
		"{distdir}":                ".tenv/dist",
		"--home={env:HOME}":        "--home=/home/tester",
		"{env:MISSING:fallback}":   "fallback",
		"{envname}-{env:HOME}-end": "unit-/home/tester-end",
	}
	for in, want := range cases {
		got, err := ExpandString(in, subCtx())
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestExpandString_Errors(t *testing.T) {
	for _, in := range []string{
		"{unknown}",
		"{env:MISSING}",
		"{env:}",
		"unterminated {envname",
	} {
		_, err := ExpandString(in, subCtx())
		assert.Error(t, err, in)
	}
}

func TestExpandCommand_PosargsSplice(t *testing.T) {
	got, err := ExpandCommand([]string{"pytest", "{posargs}", "--strict"}, subCtx())
	require.NoError(t, err)
	assert.Equal(t, []string{"pytest", "-k", "smoke", "--strict"}, got)
}

func TestExpandCommand_PosargsEmpty(t *testing.T) {
	ctx := subCtx()
	ctx.Posargs = nil
	got, err := ExpandCommand([]string{"pytest", "{posargs}"}, ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pytest"}, got, "standalone {posargs} vanishes when empty")
}

func TestExpandCommand_PosargsEmbedded(t *testing.T) {
	got, err := ExpandCommand([]string{"sh", "-c", "pytest {posargs}"}, subCtx())
	require.NoError(t, err)
	assert.Equal(t, []string{"sh", "-c", "pytest -k smoke"}, got)
}
