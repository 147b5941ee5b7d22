// Package store persists completed classification records and context
// snapshots outside the in-memory ledger. The ledger stays the system of
// record during a classification; these stores are durability and hand-off
// layers around its exports.
package store

import (
	"context"
	"errors"

	"github.com/clearfreight/tariffcore/pkg/ledger"
)

var ErrRecordNotFound = errors.New("store: classification record not found")

// Archive persists legal-record exports of completed classifications.
type Archive interface {
	// Save stores an export. Saving the same classification twice is an
	// error: an archived record is immutable.
	Save(ctx context.Context, export *ledger.LegalRecordExport) error
	// Get retrieves the export for a classification, or ErrRecordNotFound.
	Get(ctx context.Context, classificationID string) (*ledger.LegalRecordExport, error)
	// List returns the most recent exports, newest first.
	List(ctx context.Context, limit int) ([]*ledger.LegalRecordExport, error)
}

// EvidenceStore holds generated evidence packs in a blob backend, keyed by
// content hash so the same pack is never stored twice.
type EvidenceStore interface {
	// Put stores the pack and returns its storage key.
	Put(ctx context.Context, classificationID string, pack []byte, checksum string) (string, error)
	// Get retrieves a pack by the key Put returned.
	Get(ctx context.Context, key string) ([]byte, error)
}
