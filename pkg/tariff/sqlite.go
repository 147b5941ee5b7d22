package tariff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	_ "modernc.org/sqlite"
)

// SQLiteLookup serves the tariff schedule from a SQLite database. The
// schedule is import-once read-many; Add exists for the import path and for
// tests, not for the classification flow.
type SQLiteLookup struct {
	db *sql.DB
}

// NewSQLiteLookup wraps an open database and applies the schema.
func NewSQLiteLookup(db *sql.DB) (*SQLiteLookup, error) {
	s := &SQLiteLookup{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteLookup) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS tariff_codes (
        code TEXT PRIMARY KEY,
        description TEXT NOT NULL,
        level TEXT NOT NULL,
        parent TEXT NOT NULL DEFAULT ''
    );
    CREATE TABLE IF NOT EXISTS tariff_notes (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        code TEXT NOT NULL,
        source TEXT NOT NULL,
        text TEXT NOT NULL,
        type TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_tariff_notes_code ON tariff_notes(code);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Add inserts a code and its notes.
func (s *SQLiteLookup) Add(ctx context.Context, c Code, notes ...Note) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tariff_codes (code, description, level, parent) VALUES (?, ?, ?, ?)`,
		c.Code, c.Description, c.Level, c.Parent)
	if err != nil {
		return fmt.Errorf("failed to insert tariff code: %w", err)
	}
	for _, n := range notes {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO tariff_notes (code, source, text, type) VALUES (?, ?, ?, ?)`,
			c.Code, n.Source, n.Text, n.Type)
		if err != nil {
			return fmt.Errorf("failed to insert tariff note: %w", err)
		}
	}
	return nil
}

func (s *SQLiteLookup) GetByCode(ctx context.Context, code string) (*Code, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT code, description, level, parent FROM tariff_codes WHERE code = ?`, code)
	var c Code
	var parent sql.NullString
	if err := row.Scan(&c.Code, &c.Description, &c.Level, &parent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	c.Parent = parent.String
	return &c, nil
}

func (s *SQLiteLookup) GetHierarchy(ctx context.Context, code string) ([]Code, error) {
	var chain []Code
	cur := code
	for cur != "" {
		c, err := s.GetByCode(ctx, cur)
		if err != nil {
			return nil, err
		}
		chain = append(chain, *c)
		cur = c.Parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func (s *SQLiteLookup) GetApplicableNotes(ctx context.Context, code string) ([]Note, error) {
	chain, err := s.GetHierarchy(ctx, code)
	if err != nil {
		return nil, err
	}
	var notes []Note
	for _, c := range chain {
		rows, err := s.db.QueryContext(ctx,
			`SELECT source, text, type FROM tariff_notes WHERE code = ? ORDER BY id`, c.Code)
		if err != nil {
			return nil, err
		}
		batch, err := scanNotes(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, batch...)
	}
	return notes, nil
}

func (s *SQLiteLookup) SearchByKeyword(ctx context.Context, text string, opts SearchOptions) ([]SearchResult, error) {
	// Matching is done in Go with the same case folding as MemoryLookup;
	// SQL lower() only folds ASCII and the two lookups must agree.
	fold := cases.Fold()
	terms := strings.Fields(fold.String(text))
	if len(terms) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT code, description, level, parent FROM tariff_codes ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var candidates []Code
	for rows.Next() {
		var c Code
		var parent sql.NullString
		if err := rows.Scan(&c.Code, &c.Description, &c.Level, &parent); err != nil {
			return nil, err
		}
		c.Parent = parent.String
		desc := fold.String(c.Description)
		for _, term := range terms {
			if strings.Contains(desc, term) {
				candidates = append(candidates, c)
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var results []SearchResult
	for _, c := range candidates {
		chain, err := s.GetHierarchy(ctx, c.Code)
		if err != nil {
			return nil, err
		}
		notes, err := s.GetApplicableNotes(ctx, c.Code)
		if err != nil {
			return nil, err
		}
		if opts.ExcludeExclusions && hasMatchingExclusion(fold, notes, terms) {
			continue
		}
		results = append(results, SearchResult{Code: c, Hierarchy: chain, Notes: notes})
		if opts.Limit > 0 && len(results) == opts.Limit {
			break
		}
	}
	return results, nil
}

func scanNotes(rows *sql.Rows) ([]Note, error) {
	defer func() { _ = rows.Close() }()
	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.Source, &n.Text, &n.Type); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}
