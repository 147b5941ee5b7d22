package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/clearfreight/tariffcore/pkg/ledger"
)

// PostgresArchive stores legal-record exports in PostgreSQL, for deployments
// where the archive is shared across brokers.
type PostgresArchive struct {
	db *sql.DB
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS classification_records (
	classification_id TEXT PRIMARY KEY,
	export_id TEXT NOT NULL,
	version TEXT NOT NULL,
	exported_at TIMESTAMPTZ NOT NULL,
	bundle_hash TEXT NOT NULL,
	integrity_ok BOOLEAN NOT NULL,
	record JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_classification_records_exported_at
	ON classification_records(exported_at);
`

// NewPostgresArchive wraps an open database.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{db: db}
}

// Init creates the necessary tables.
func (p *PostgresArchive) Init(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, postgresSchema)
	return err
}

func (p *PostgresArchive) Save(ctx context.Context, export *ledger.LegalRecordExport) error {
	recordJSON, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("store: marshal export: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO classification_records
			(classification_id, export_id, version, exported_at, bundle_hash, integrity_ok, record)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		export.ClassificationID, export.ExportID, export.Version,
		export.ExportedAt.UTC(), export.BundleHash, export.IntegrityOK, recordJSON)
	if err != nil {
		return fmt.Errorf("store: insert classification record: %w", err)
	}
	return nil
}

func (p *PostgresArchive) Get(ctx context.Context, classificationID string) (*ledger.LegalRecordExport, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT record FROM classification_records WHERE classification_id = $1`, classificationID)
	var recordJSON []byte
	if err := row.Scan(&recordJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return decodeRecord(string(recordJSON))
}

func (p *PostgresArchive) List(ctx context.Context, limit int) ([]*ledger.LegalRecordExport, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT record FROM classification_records
		ORDER BY exported_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var exports []*ledger.LegalRecordExport
	for rows.Next() {
		var recordJSON []byte
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, err
		}
		export, err := decodeRecord(string(recordJSON))
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
