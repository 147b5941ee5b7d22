package tariff

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populate loads a small slice of chapter 84/85 into any writable lookup.
func chapter84Fixture() []struct {
	code  Code
	notes []Note
} {
	return []struct {
		code  Code
		notes []Note
	}{
		{
			code: Code{Code: "84", Description: "Nuclear reactors, boilers, machinery and mechanical appliances", Level: LevelChapter},
			notes: []Note{
				{Source: "Chapter 84 Note 1", Text: "This chapter does not cover millstones or grindstones of Chapter 68", Type: NoteExclusion},
			},
		},
		{
			code: Code{Code: "8471", Description: "Automatic data processing machines and units thereof", Level: LevelHeading, Parent: "84"},
			notes: []Note{
				{Source: "Heading 8471 Note 6", Text: "Machines performing a specific function other than data processing are excluded", Type: NoteGeneral},
			},
		},
		{
			code: Code{Code: "847130", Description: "Portable automatic data processing machines, weighing not more than 10 kg", Level: LevelSubheading, Parent: "8471"},
		},
		{
			code: Code{Code: "85", Description: "Electrical machinery and equipment and parts thereof", Level: LevelChapter},
		},
		{
			code: Code{Code: "8517", Description: "Telephone sets, including smartphones and other telephones for cellular networks", Level: LevelHeading, Parent: "85"},
			notes: []Note{
				{Source: "Heading 8517 Note", Text: "Telephone answering machines of heading 8519 are not covered", Type: NoteExclusion},
			},
		},
		{
			code: Code{Code: "9017", Description: "Maßbänder und andere Längenmessinstrumente", Level: LevelHeading, Parent: "90"},
		},
		{
			code: Code{Code: "90", Description: "Optical, measuring, checking and precision instruments", Level: LevelChapter},
		},
	}
}

func newMemoryFixture(t *testing.T) *MemoryLookup {
	t.Helper()
	m := NewMemoryLookup()
	for _, f := range chapter84Fixture() {
		m.Add(f.code, f.notes...)
	}
	return m
}

func newSQLiteFixture(t *testing.T) *SQLiteLookup {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewSQLiteLookup(db)
	require.NoError(t, err)
	for _, f := range chapter84Fixture() {
		require.NoError(t, s.Add(context.Background(), f.code, f.notes...))
	}
	return s
}

// Both implementations must satisfy the same contract.
func lookups(t *testing.T) map[string]Lookup {
	return map[string]Lookup{
		"memory": newMemoryFixture(t),
		"sqlite": newSQLiteFixture(t),
	}
}

func TestGetByCode(t *testing.T) {
	for name, lk := range lookups(t) {
		t.Run(name, func(t *testing.T) {
			c, err := lk.GetByCode(context.Background(), "8471")
			require.NoError(t, err)
			assert.Equal(t, LevelHeading, c.Level)
			assert.Equal(t, "84", c.Parent)

			_, err = lk.GetByCode(context.Background(), "9999")
			assert.ErrorIs(t, err, ErrCodeNotFound)
		})
	}
}

func TestGetHierarchy_ChapterFirst(t *testing.T) {
	for name, lk := range lookups(t) {
		t.Run(name, func(t *testing.T) {
			chain, err := lk.GetHierarchy(context.Background(), "847130")
			require.NoError(t, err)
			require.Len(t, chain, 3)
			assert.Equal(t, "84", chain[0].Code)
			assert.Equal(t, "8471", chain[1].Code)
			assert.Equal(t, "847130", chain[2].Code)
		})
	}
}

func TestGetApplicableNotes_IncludesAncestors(t *testing.T) {
	for name, lk := range lookups(t) {
		t.Run(name, func(t *testing.T) {
			notes, err := lk.GetApplicableNotes(context.Background(), "847130")
			require.NoError(t, err)
			require.Len(t, notes, 2)
			assert.Equal(t, NoteExclusion, notes[0].Type) // chapter note first
		})
	}
}

func TestSearchByKeyword(t *testing.T) {
	for name, lk := range lookups(t) {
		t.Run(name, func(t *testing.T) {
			results, err := lk.SearchByKeyword(context.Background(), "data processing", SearchOptions{})
			require.NoError(t, err)
			require.NotEmpty(t, results)
			for _, r := range results {
				assert.Contains(t, r.Code.Description, "data processing")
				assert.NotEmpty(t, r.Hierarchy)
			}

			results, err = lk.SearchByKeyword(context.Background(), "machinery", SearchOptions{Limit: 1})
			require.NoError(t, err)
			assert.Len(t, results, 1)
		})
	}
}

func TestSearchByKeyword_CaseFolding(t *testing.T) {
	for name, lk := range lookups(t) {
		t.Run(name, func(t *testing.T) {
			// "MASSBÄNDER" folds to "massbänder", as does "Maßbänder" in the
			// 9017 description; ASCII-only lowercasing would miss the match.
			// Both implementations must fold identically.
			results, err := lk.SearchByKeyword(context.Background(), "MASSBÄNDER", SearchOptions{})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, "9017", results[0].Code.Code)

			results, err = lk.SearchByKeyword(context.Background(), "maßbänder", SearchOptions{})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, "9017", results[0].Code.Code)
		})
	}
}

func TestSearchByKeyword_ExclusionGating(t *testing.T) {
	for name, lk := range lookups(t) {
		t.Run(name, func(t *testing.T) {
			// "telephone" matches heading 8517, but 8517 carries an exclusion
			// note mentioning telephones of heading 8519.
			results, err := lk.SearchByKeyword(context.Background(), "telephone", SearchOptions{})
			require.NoError(t, err)
			assert.NotEmpty(t, results)

			gated, err := lk.SearchByKeyword(context.Background(), "telephone", SearchOptions{ExcludeExclusions: true})
			require.NoError(t, err)
			assert.Empty(t, gated)
		})
	}
}
