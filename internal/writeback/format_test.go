package writeback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const cleanGo = "package main\n\nimport \"example.com/legacy/util\"\n\nfunc main() {\n\tutil.Run()\n}\n"

func TestFormatGo_ReformatsCleanFile(t *testing.T) {
	after := "package main\n\nimport \"example.com/modern/util\"\n\nfunc main()  {\n\tutil.Run()\n}\n"
	got := FormatGo([]byte(cleanGo), []byte(after), "main.go")
	assert.Contains(t, string(got), "func main() {\n")
	assert.Contains(t, string(got), "\"example.com/modern/util\"")
}

func TestFormatGo_LeavesUnformattedFileAlone(t *testing.T) {
	before := "package main\n\nfunc A()  {\nreturn\n}\n"
	after := "package main\n\nfunc B()  {\nreturn\n}\n"
	assert.Equal(t, after, string(FormatGo([]byte(before), []byte(after), "main.go")))
}

func TestFormatGo_NonGoPassthrough(t *testing.T) {
	after := []byte("class A {  }\n")
	assert.Equal(t, after, FormatGo(after, after, "A.java"))
}

func TestFormatGo_InvalidRewritePassthrough(t *testing.T) {
	after := []byte("package main\n\nfunc broken {{{")
	assert.Equal(t, after, FormatGo([]byte(cleanGo), after, "main.go"))
}
