package writeback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile_Replaces(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "src/A.java", []byte("class A {}\n"), 0o644))

	require.NoError(t, WriteFile(fsys, "src/A.java", []byte("class B {}\n")))

	got, err := util.ReadFile(fsys, "src/A.java")
	require.NoError(t, err)
	assert.Equal(t, "class B {}\n", string(got))

	entries, err := fsys.ReadDir("src")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteFile_KeepsPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.py")
	require.NoError(t, os.WriteFile(path, []byte("print(1)\n"), 0o755))

	fsys := osfs.New(dir)
	if _, ok := fsys.(billy.Change); !ok {
		t.Skip("filesystem cannot change permissions")
	}
	require.NoError(t, WriteFile(fsys, "run.py", []byte("print(2)\n")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	got, _ := os.ReadFile(path)
	assert.Equal(t, "print(2)\n", string(got))
}
