package typeres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/agentic-research/recast/api"
	_ "modernc.org/sqlite"
)

const indexSchema = `
CREATE TABLE IF NOT EXISTS types (
	name TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	decl JSON NOT NULL
);
CREATE TABLE IF NOT EXISTS supertypes (
	name TEXT NOT NULL,
	super TEXT NOT NULL,
	ord INTEGER NOT NULL,
	PRIMARY KEY (name, super)
) WITHOUT ROWID;
CREATE INDEX IF NOT EXISTS idx_super ON supertypes(super);
`

// BuildSQLiteIndex writes a classpath description into a sqlite type index at path.
func BuildSQLiteIndex(path string, cp *api.Classpath) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		return err
	}
	if _, err := db.Exec(indexSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmtType, err := tx.Prepare("INSERT OR REPLACE INTO types (name, kind, decl) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare types: %w", err)
	}
	defer func() { _ = stmtType.Close() }()
	stmtSuper, err := tx.Prepare("INSERT OR REPLACE INTO supertypes (name, super, ord) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare supertypes: %w", err)
	}
	defer func() { _ = stmtSuper.Close() }()

	for _, d := range cp.Types {
		raw, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encode %s: %w", d.Name, err)
		}
		kind := d.Kind
		if kind == "" {
			kind = "class"
		}
		if _, err := stmtType.Exec(d.Name, kind, string(raw)); err != nil {
			return fmt.Errorf("insert %s: %w", d.Name, err)
		}
		for i, s := range d.Supertypes {
			if _, err := stmtSuper.Exec(d.Name, erasure(s), i); err != nil {
				return fmt.Errorf("insert supertype %s of %s: %w", s, d.Name, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SQLiteIndex is a Resolver backed by a sqlite type index. Lookups are
// cached; the database is opened query-only.
type SQLiteIndex struct {
	db    *sql.DB
	cache sync.Map // name -> *TypeInfo (nil for a known miss)
}

// OpenSQLiteIndex opens an index written by BuildSQLiteIndex.
func OpenSQLiteIndex(path string) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(4)
	if _, err := db.Exec("PRAGMA query_only=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set query_only: %w", err)
	}
	var n int
	if err := db.QueryRow("SELECT count(*) FROM types").Scan(&n); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s is not a type index: %w", path, err)
	}
	return &SQLiteIndex{db: db}, nil
}

func (ix *SQLiteIndex) Type(name string) (*TypeInfo, bool) {
	if v, ok := ix.cache.Load(name); ok {
		info := v.(*TypeInfo)
		return info, info != nil
	}
	info, err := ix.load(name)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("typeres: lookup %s: %v", name, err)
			return nil, false
		}
		info = nil
	}
	ix.cache.Store(name, info)
	return info, info != nil
}

func (ix *SQLiteIndex) load(name string) (*TypeInfo, error) {
	var raw string
	err := ix.db.QueryRow("SELECT decl FROM types WHERE name = ?", name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var d api.TypeDecl
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return FromDecl(d), nil
}

// Subtypes returns the names of types that directly extend or implement name.
func (ix *SQLiteIndex) Subtypes(name string) ([]string, error) {
	rows, err := ix.db.Query("SELECT name FROM supertypes WHERE super = ? ORDER BY name", name)
	if err != nil {
		return nil, fmt.Errorf("query subtypes of %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Close releases the database.
func (ix *SQLiteIndex) Close() error {
	return ix.db.Close()
}
