// Package index persists the type hierarchy of a codebase in a SQLite
// database so it can be queried without parsing the sources again.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/gravel/groovy"
	"github.com/dhamidi/gravel/groovy/codebase"
)

var log = commonlog.GetLogger("gravel.index")

var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS files (
	path TEXT PRIMARY KEY,
	package TEXT NOT NULL,
	indexed_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS types (
	qualified_name TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	file TEXT NOT NULL,
	line INTEGER NOT NULL,
	FOREIGN KEY(file) REFERENCES files(path) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS types_name ON types(name);
CREATE TABLE IF NOT EXISTS supertypes (
	type TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	resolved TEXT NOT NULL DEFAULT '',
	implicit BOOLEAN NOT NULL,
	PRIMARY KEY(type, position),
	FOREIGN KEY(type) REFERENCES types(qualified_name) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS supertypes_name ON supertypes(name);
CREATE INDEX IF NOT EXISTS supertypes_resolved ON supertypes(resolved);
`

type Index struct {
	db *sql.DB
}

// Type is an indexed type definition.
type Type struct {
	QualifiedName string `json:"qualifiedName" yaml:"qualifiedName"`
	Name          string `json:"name" yaml:"name"`
	Kind          string `json:"kind" yaml:"kind"`
	File          string `json:"file" yaml:"file"`
	Line          int    `json:"line" yaml:"line"`
}

// Supertype is one entry of a type's supertype list. Name is the reference
// as written; Resolved is the qualified name of the definition it resolved
// to when indexed, or empty.
type Supertype struct {
	Position int    `json:"position" yaml:"position"`
	Name     string `json:"name" yaml:"name"`
	Resolved string `json:"resolved,omitempty" yaml:"resolved,omitempty"`
	Implicit bool   `json:"implicit" yaml:"implicit"`
}

// Open opens or creates the database at path, creating parent directories
// as needed.
func Open(path string) (*Index, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
	}
	// Foreign keys go in the DSN so every pooled connection enforces them.
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Index{db: db}, nil
}

func (ix *Index) Close() error {
	if ix == nil || ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// IndexAll indexes every file of c.
func (ix *Index) IndexAll(ctx context.Context, c *codebase.Codebase) (int, error) {
	count := 0
	for _, path := range c.Paths() {
		if err := ix.IndexFile(ctx, c, path); err != nil {
			return count, err
		}
		count++
	}
	log.Infof("indexed %d files", count)
	return count, nil
}

// IndexFile replaces the rows of one file with its current type
// definitions. Supertype references are resolved against c.
func (ix *Index) IndexFile(ctx context.Context, c *codebase.Codebase, path string) error {
	f := c.GetFile(path)
	if f == nil {
		return fmt.Errorf("index %s: %w", path, ErrNotFound)
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index %s: %w", path, err)
	}
	if err := writeFile(ctx, tx, c, f); err != nil {
		tx.Rollback()
		return fmt.Errorf("index %s: %w", path, err)
	}
	return tx.Commit()
}

func writeFile(ctx context.Context, tx *sql.Tx, c *codebase.Codebase, f *codebase.FileInfo) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, f.Path); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO files (path, package, indexed_at) VALUES (?, ?, ?)`,
		f.Path, f.Package, time.Now().UTC()); err != nil {
		return err
	}

	for _, td := range f.Types {
		qn := td.QualifiedName()
		if qn == "" {
			continue
		}
		line := td.Node().Span.Start.Line
		if ident := td.NameIdentifier(); ident != nil {
			line = ident.Span.Start.Line
		}
		// A type moved from another file replaces the old row.
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO types (qualified_name, name, kind, file, line) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(qualified_name) DO UPDATE SET
				name=excluded.name, kind=excluded.kind, file=excluded.file, line=excluded.line`,
			qn, td.Name(), string(td.Kind()), f.Path, line); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM supertypes WHERE type = ?`, qn); err != nil {
			return err
		}
		for i, ref := range td.SuperTypes() {
			if err := writeSupertype(ctx, tx, c, qn, i, ref); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSupertype(ctx context.Context, tx *sql.Tx, c *codebase.Codebase, qn string, position int, ref *groovy.TypeRef) error {
	resolved := ""
	if st := c.ResolveType(ref); st != nil {
		resolved = st.QualifiedName()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO supertypes (type, position, name, resolved, implicit) VALUES (?, ?, ?, ?, ?)`,
		qn, position, ref.ReferenceName(), resolved, ref.IsImplicit())
	return err
}

// RemoveFile drops a file and the types declared in it.
func (ix *Index) RemoveFile(ctx context.Context, path string) error {
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// Lookup returns the type with the given qualified name.
func (ix *Index) Lookup(ctx context.Context, qualifiedName string) (*Type, error) {
	row := ix.db.QueryRowContext(ctx,
		`SELECT qualified_name, name, kind, file, line FROM types WHERE qualified_name = ?`,
		qualifiedName)
	var t Type
	if err := row.Scan(&t.QualifiedName, &t.Name, &t.Kind, &t.File, &t.Line); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("type %s: %w", qualifiedName, ErrNotFound)
		}
		return nil, err
	}
	return &t, nil
}

// Supertypes returns the supertype list recorded for a type, in
// declaration order.
func (ix *Index) Supertypes(ctx context.Context, qualifiedName string) ([]Supertype, error) {
	if _, err := ix.Lookup(ctx, qualifiedName); err != nil {
		return nil, err
	}
	rows, err := ix.db.QueryContext(ctx,
		`SELECT position, name, resolved, implicit FROM supertypes WHERE type = ? ORDER BY position`,
		qualifiedName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var supers []Supertype
	for rows.Next() {
		var s Supertype
		if err := rows.Scan(&s.Position, &s.Name, &s.Resolved, &s.Implicit); err != nil {
			return nil, err
		}
		supers = append(supers, s)
	}
	return supers, rows.Err()
}

// Subtypes returns the types that list name as a direct supertype. A
// qualified name matches resolved references; a simple name also matches
// references written that way.
func (ix *Index) Subtypes(ctx context.Context, name string) ([]Type, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT DISTINCT t.qualified_name, t.name, t.kind, t.file, t.line
		FROM supertypes s JOIN types t ON t.qualified_name = s.type
		WHERE s.resolved = ? OR s.name = ?
		ORDER BY t.qualified_name`, name, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []Type
	for rows.Next() {
		var t Type
		if err := rows.Scan(&t.QualifiedName, &t.Name, &t.Kind, &t.File, &t.Line); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// Types returns every indexed type ordered by qualified name.
func (ix *Index) Types(ctx context.Context) ([]Type, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT qualified_name, name, kind, file, line FROM types ORDER BY qualified_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []Type
	for rows.Next() {
		var t Type
		if err := rows.Scan(&t.QualifiedName, &t.Name, &t.Kind, &t.File, &t.Line); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}
