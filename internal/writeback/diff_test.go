package writeback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	before := "a\nb\nc\n"
	after := "a\nB\nc\n"
	got, err := Diff("src/x.txt", before, after)
	require.NoError(t, err)
	assert.Equal(t, "--- a/src/x.txt\n+++ b/src/x.txt\n@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n", got)
}

func TestDiff_HunkCountsOnlyRealLines(t *testing.T) {
	before := "package a;\n\nimport org.old.Widget;\n\nclass A {}\n"
	after := "package a;\n\nimport org.acme.Gadget;\n\nclass A {}\n"
	got, err := Diff("A.java", before, after)
	require.NoError(t, err)
	assert.Equal(t, "--- a/A.java\n+++ b/A.java\n@@ -1,5 +1,5 @@\n package a;\n \n-import org.old.Widget;\n+import org.acme.Gadget;\n \n class A {}\n", got)
}

func TestDiff_MissingFinalNewline(t *testing.T) {
	got, err := Diff("x", "a\nb", "a\nB")
	require.NoError(t, err)
	assert.Equal(t, "--- a/x\n+++ b/x\n@@ -1,2 +1,2 @@\n a\n-b\n\\ No newline at end of file\n+B\n\\ No newline at end of file\n", got)
}

func TestDiff_Equal(t *testing.T) {
	got, err := Diff("x", "same\n", "same\n")
	require.NoError(t, err)
	assert.Empty(t, got)
}
