package writeback

import (
	"bytes"
	"strings"

	"mvdan.cc/gofumpt/format"
)

// FormatGo runs gofumpt over rewritten Go source, but only when the file
// was gofumpt-clean before the rewrite. Files that were not are returned
// unchanged so formatting never touches bytes no recipe rewrote. Non-Go
// files, and rewrites gofumpt cannot parse, are returned unchanged too.
func FormatGo(before, after []byte, filePath string) []byte {
	if !strings.HasSuffix(filePath, ".go") {
		return after
	}
	if clean, err := format.Source(before, format.Options{}); err != nil || !bytes.Equal(clean, before) {
		return after
	}
	formatted, err := format.Source(after, format.Options{})
	if err != nil {
		return after
	}
	return formatted
}
