package ingest

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Source is one input file.
type Source struct {
	Path string
	Text []byte
}

// LoadSources reads every file of a supported language under roots. A root
// may name a single file. Hidden directories and vendor trees are skipped.
// Results are sorted by path.
func LoadSources(fsys billy.Filesystem, roots ...string) ([]Source, error) {
	seen := make(map[string]bool)
	var out []Source
	add := func(p string) error {
		p = path.Clean(p)
		if seen[p] {
			return nil
		}
		data, err := util.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		seen[p] = true
		out = append(out, Source{Path: p, Text: data})
		return nil
	}
	for _, root := range roots {
		info, err := fsys.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if _, _, ok := LanguageForPath(root); !ok {
				return nil, fmt.Errorf("%s: %w", root, ErrUnsupportedLanguage)
			}
			if err := add(root); err != nil {
				return nil, err
			}
			continue
		}
		err = util.Walk(fsys, root, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				if p != root && skipDir(fi.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if _, _, ok := LanguageForPath(p); !ok {
				return nil
			}
			return add(p)
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules" || name == "testdata"
}
