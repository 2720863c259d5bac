package api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recast.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": "v1",
		"classpath": "cp.json",
		"recipes": [{"type": "ChangeType", "options": {"old": "a.B", "new": "a.C"}}]
	}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxPasses, cfg.MaxPasses)
	assert.Equal(t, filepath.Join(dir, "cp.json"), cfg.Classpath)
	require.Len(t, cfg.Recipes, 1)
	assert.Equal(t, "ChangeType", cfg.Recipes[0].Name)
	assert.Equal(t, "a.C", cfg.Recipes[0].Options["new"])
}

func TestLoadConfig_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recast.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
version = "v1"
max_passes = 5
jobs = 2

[[recipes]]
name = "rename"
type = "ChangePackage"

[recipes.options]
old = "com.acme.util"
new = "com.acme.common"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxPasses)
	assert.Equal(t, 2, cfg.Jobs)
	require.Len(t, cfg.Recipes, 1)
	assert.Equal(t, "rename", cfg.Recipes[0].Name)
	assert.Equal(t, "com.acme.common", cfg.Recipes[0].Options["new"])
}

func TestLoadConfig_MissingRecipeType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"recipes": [{"name": "x"}]}`), 0o644))
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "missing type")
}

func TestLoadConfig_NegativePasses(t *testing.T) {
	cfg := Config{MaxPasses: -1}
	assert.Error(t, cfg.Normalize())
}

func TestParseClasspath(t *testing.T) {
	cp, err := ParseClasspath([]byte(`{"types": [
		{"name": "a.B", "kind": "class", "supertypes": ["a.A"],
		 "methods": [{"name": "<constructor>"}, {"name": "get", "params": ["int"], "returns": "java.lang.String"}]}
	]}`))
	require.NoError(t, err)
	require.Len(t, cp.Types, 1)
	assert.Equal(t, []string{"a.A"}, cp.Types[0].Supertypes)
	assert.Equal(t, "java.lang.String", cp.Types[0].Methods[1].Returns)

	_, err = ParseClasspath([]byte(`{"types": [{"kind": "class"}]}`))
	assert.Error(t, err)
}
