package ingest

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSources(t *testing.T) {
	fs := memfs.New()
	files := map[string]string{
		"src/b/B.java":       "class B {}",
		"src/a/A.java":       "class A {}",
		"src/a/notes.txt":    "ignored",
		"src/.hidden/H.java": "class H {}",
		"src/vendor/V.java":  "class V {}",
		"tools/main.go":      "package main",
	}
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
	}

	got, err := LoadSources(fs, "src", "tools/main.go", "src/a")
	require.NoError(t, err)

	var paths []string
	for _, s := range got {
		paths = append(paths, s.Path)
	}
	assert.Equal(t, []string{"src/a/A.java", "src/b/B.java", "tools/main.go"}, paths)
	assert.Equal(t, "class A {}", string(got[0].Text))
}

func TestLoadSources_Errors(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "notes.txt", []byte("x"), 0o644))

	_, err := LoadSources(fs, "missing")
	assert.Error(t, err)

	_, err = LoadSources(fs, "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}
