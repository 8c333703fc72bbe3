package tconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalo-lang/thalo/internal/checker"
)

func testRules() []*checker.Rule {
	return []*checker.Rule{
		{Code: "unknown-field", DefaultSeverity: checker.SeverityError},
		{Code: "missing-title", DefaultSeverity: checker.SeverityWarning},
	}
}

func TestLoadWithNoSourcesFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(Source{ConfigPaths: []string{t.TempDir()}}, testRules())
	require.NoError(t, err)
	assert.Equal(t, checker.SeverityError, cfg.Rules["unknown-field"])
	assert.Equal(t, checker.SeverityWarning, cfg.Rules["missing-title"])
}

func TestLoadConfigFileOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thalo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  unknown_field: off\n"), 0o644))

	cfg, err := Load(Source{ConfigFile: path}, testRules())
	require.NoError(t, err)
	assert.Equal(t, checker.SeverityOff, cfg.Rules["unknown-field"])
	assert.Equal(t, checker.SeverityWarning, cfg.Rules["missing-title"])
}

func TestLoadEnvironmentOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thalo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  unknown_field: off\n"), 0o644))

	t.Setenv("THALO_RULES_UNKNOWN_FIELD", "info")
	cfg, err := Load(Source{ConfigFile: path}, testRules())
	require.NoError(t, err)
	assert.Equal(t, checker.SeverityInfo, cfg.Rules["unknown-field"])
}

func TestLoadInvalidSeverityErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thalo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  unknown_field: critical\n"), 0o644))

	_, err := Load(Source{ConfigFile: path}, testRules())
	require.Error(t, err)
}
