package typeres

import (
	"path/filepath"
	"strings"

	"github.com/agentic-research/recast/api"
)

// Open loads a classpath from a JSON description or a sqlite index (.db).
// The returned close func releases any database handle.
func Open(path string) (Resolver, func() error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		ix, err := OpenSQLiteIndex(path)
		if err != nil {
			return nil, nil, err
		}
		return ix, ix.Close, nil
	}
	cp, err := api.LoadClasspath(path)
	if err != nil {
		return nil, nil, err
	}
	return NewIndex(cp), func() error { return nil }, nil
}
