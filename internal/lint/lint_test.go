package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tenvctl/internal/config"
)

func TestBuildArgv_AllOptions(t *testing.T) {
	cfg := config.LintConfig{
		Linter:                 []string{"flake8"},
		Exclude:                []string{".git", "*.egg", "build"},
		EnableExtensions:       []string{"G"},
		ApplicationImportNames: []string{"splunklib", "tests"},
		MaxLineLength:          120,
	}

	argv := BuildArgv(cfg, []string{"splunklib", "tests"})
	assert.Equal(t, []string{
		"flake8",
		"--exclude=.git,*.egg,build",
		"--enable-extensions=G",
		"--application-import-names=splunklib,tests",
		"--max-line-length=120",
		"splunklib",
		"tests",
	}, argv)
}

func TestBuildArgv_Defaults(t *testing.T) {
	argv := BuildArgv(config.LintConfig{}, nil)
	assert.Equal(t, []string{"flake8", "."}, argv)
}

func TestBuildArgv_CustomLinter(t *testing.T) {
	cfg := config.LintConfig{
		Linter:        []string{"python", "-m", "flake8"},
		MaxLineLength: 99,
	}
	argv := BuildArgv(cfg, nil)
	assert.Equal(t, []string{"python", "-m", "flake8", "--max-line-length=99", "."}, argv)
}
