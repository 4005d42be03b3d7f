package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"methodorder/internal/catalog"
	"methodorder/internal/extractor"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ CatalogStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS files (
			path TEXT PRIMARY KEY,
			language TEXT,
			package TEXT,
			generated INTEGER,
			hash TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS units (
			filepath TEXT,
			position INTEGER,
			id TEXT,
			unit_type TEXT,
			name TEXT,
			owner TEXT,
			package TEXT,
			language TEXT,
			start_line INTEGER,
			end_line INTEGER,
			description TEXT,
			details JSON,
			PRIMARY KEY (filepath, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_units_owner ON units(package, owner);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

type unitDetails struct {
	Type   *extractor.TypeDetails   `json:"type,omitempty"`
	Method *extractor.MethodDetails `json:"method,omitempty"`
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) SaveFile(ctx context.Context, fu *extractor.FileUnits) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM units WHERE filepath = ?`, fu.Path); err != nil {
		return err
	}
	if err := insertFile(ctx, tx, fu); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) RemoveFile(ctx context.Context, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{`DELETE FROM units WHERE filepath = ?`, `DELETE FROM files WHERE path = ?`} {
		if _, err := tx.ExecContext(ctx, q, path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return tx.Commit()
}

func insertFile(ctx context.Context, tx execer, fu *extractor.FileUnits) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO files (path, language, package, generated, hash)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			language=excluded.language,
			package=excluded.package,
			generated=excluded.generated,
			hash=excluded.hash
	`, fu.Path, fu.Language, fu.Package, fu.Generated, fu.Hash)
	if err != nil {
		return err
	}

	for i, u := range fu.Units {
		details, err := json.Marshal(unitDetails{Type: u.Type, Method: u.Method})
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO units (filepath, position, id, unit_type, name, owner, package, language, start_line, end_line, description, details)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, fu.Path, i, u.ID, u.UnitType, u.Name, u.Owner, u.Package, u.Language, u.StartLine, u.EndLine, u.Description, details)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	files := make(map[string]*extractor.FileUnits)

	// 1. Load Files
	rows, err := s.db.QueryContext(ctx, "SELECT path, language, package, generated, hash FROM files")
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		fu := &extractor.FileUnits{}
		if err := rows.Scan(&fu.Path, &fu.Language, &fu.Package, &fu.Generated, &fu.Hash); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files[fu.Path] = fu
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 2. Load Units in declaration order
	unitRows, err := s.db.QueryContext(ctx, `
		SELECT filepath, id, unit_type, name, owner, package, language, start_line, end_line, description, details
		FROM units ORDER BY filepath, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer unitRows.Close()

	for unitRows.Next() {
		var u extractor.CodeUnit
		var details []byte
		if err := unitRows.Scan(&u.Filepath, &u.ID, &u.UnitType, &u.Name, &u.Owner, &u.Package, &u.Language, &u.StartLine, &u.EndLine, &u.Description, &details); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		if len(details) > 0 {
			var d unitDetails
			if err := json.Unmarshal(details, &d); err != nil {
				return nil, fmt.Errorf("failed to decode unit %s: %w", u.ID, err)
			}
			u.Type, u.Method = d.Type, d.Method
		}
		fu, ok := files[u.Filepath]
		if !ok {
			fu = &extractor.FileUnits{Path: u.Filepath, Language: u.Language, Package: u.Package}
			files[u.Filepath] = fu
		}
		fu.Units = append(fu.Units, &u)
	}
	if err := unitRows.Err(); err != nil {
		return nil, err
	}

	c := catalog.New()
	for _, fu := range files {
		c.AddFile(fu)
	}
	c.Link()
	return c, nil
}
