// Package tariff defines the read-only reference-data boundary: the tariff
// code hierarchy, its legal notes, and keyword search. The classification
// engine treats this data as authoritative and never writes through it;
// acquisition (schedule imports, note extraction) happens upstream.
package tariff

import (
	"context"
	"errors"
)

var ErrCodeNotFound = errors.New("tariff: code not found")

// Code levels, from broadest to most specific.
const (
	LevelChapter    = "chapter"     // 2 digits
	LevelHeading    = "heading"     // 4 digits
	LevelSubheading = "subheading"  // 6 digits
	LevelTariffItem = "tariff_item" // 8 digits
)

// Code is one node of the tariff hierarchy.
type Code struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Level       string `json:"level"`
	Parent      string `json:"parent,omitempty"`
}

// Note types.
const (
	NoteInclusion = "inclusion"
	NoteExclusion = "exclusion"
	NoteGeneral   = "general"
)

// Note is a legal note attached to a point in the hierarchy. Exclusion notes
// gate which headings a classification may suggest.
type Note struct {
	Source string `json:"source"`
	Text   string `json:"text"`
	Type   string `json:"type"`
}

// SearchOptions controls SearchByKeyword.
type SearchOptions struct {
	// ExcludeExclusions drops codes carrying an applicable exclusion note
	// whose text matches the search terms.
	ExcludeExclusions bool
	// Limit caps the result count; zero means no cap.
	Limit int
}

// SearchResult is one keyword match with its context.
type SearchResult struct {
	Code      Code   `json:"code"`
	Hierarchy []Code `json:"hierarchy"`
	Notes     []Note `json:"notes"`
}

// Lookup is the reference-data contract the engine consumes.
type Lookup interface {
	// GetByCode resolves a code exactly, or ErrCodeNotFound.
	GetByCode(ctx context.Context, code string) (*Code, error)
	// GetHierarchy returns the ancestor chain from chapter down to the code
	// itself, in order.
	GetHierarchy(ctx context.Context, code string) ([]Code, error)
	// GetApplicableNotes returns the notes attached to the code and to every
	// ancestor, chapter first.
	GetApplicableNotes(ctx context.Context, code string) ([]Note, error)
	// SearchByKeyword matches description text.
	SearchByKeyword(ctx context.Context, text string, opts SearchOptions) ([]SearchResult, error)
}
