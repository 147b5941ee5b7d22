package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/clearfreight/tariffcore/pkg/ledger"
)

// SQLiteArchive stores legal-record exports in SQLite. The full export is
// kept as a JSON blob next to the indexed columns, so a record round-trips
// byte-exactly even as the export format gains fields.
type SQLiteArchive struct {
	db *sql.DB
}

// NewSQLiteArchive wraps an open database and applies the schema.
func NewSQLiteArchive(db *sql.DB) (*SQLiteArchive, error) {
	s := &SQLiteArchive{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteArchive) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS classification_records (
        classification_id TEXT PRIMARY KEY,
        export_id TEXT NOT NULL,
        version TEXT NOT NULL,
        exported_at DATETIME NOT NULL,
        bundle_hash TEXT NOT NULL,
        integrity_ok INTEGER NOT NULL,
        record JSON NOT NULL
    );`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *SQLiteArchive) Save(ctx context.Context, export *ledger.LegalRecordExport) error {
	recordJSON, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("store: marshal export: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO classification_records
            (classification_id, export_id, version, exported_at, bundle_hash, integrity_ok, record)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		export.ClassificationID, export.ExportID, export.Version,
		export.ExportedAt.UTC().Format(time.RFC3339Nano),
		export.BundleHash, export.IntegrityOK, string(recordJSON))
	if err != nil {
		return fmt.Errorf("store: insert classification record: %w", err)
	}
	return nil
}

func (s *SQLiteArchive) Get(ctx context.Context, classificationID string) (*ledger.LegalRecordExport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record FROM classification_records WHERE classification_id = ?`, classificationID)
	var recordJSON string
	if err := row.Scan(&recordJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return decodeRecord(recordJSON)
}

func (s *SQLiteArchive) List(ctx context.Context, limit int) ([]*ledger.LegalRecordExport, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT record FROM classification_records
        ORDER BY exported_at DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var exports []*ledger.LegalRecordExport
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, err
		}
		export, err := decodeRecord(recordJSON)
		if err != nil {
			return nil, err
		}
		exports = append(exports, export)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exports, nil
}

func decodeRecord(recordJSON string) (*ledger.LegalRecordExport, error) {
	var export ledger.LegalRecordExport
	if err := json.Unmarshal([]byte(recordJSON), &export); err != nil {
		return nil, fmt.Errorf("store: decode classification record: %w", err)
	}
	if err := ledger.CheckExportVersion(export.Version); err != nil {
		return nil, err
	}
	return &export, nil
}
