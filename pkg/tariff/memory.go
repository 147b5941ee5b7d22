package tariff

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// MemoryLookup is an in-memory Lookup, used in tests and for small embedded
// schedules. Safe for concurrent use; writes are expected only during setup.
type MemoryLookup struct {
	mu    sync.RWMutex
	codes map[string]Code
	notes map[string][]Note
}

// NewMemoryLookup builds an empty lookup.
func NewMemoryLookup() *MemoryLookup {
	return &MemoryLookup{
		codes: make(map[string]Code),
		notes: make(map[string][]Note),
	}
}

// Add inserts a code and its notes.
func (m *MemoryLookup) Add(c Code, notes ...Note) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[c.Code] = c
	if len(notes) > 0 {
		m.notes[c.Code] = append(m.notes[c.Code], notes...)
	}
}

func (m *MemoryLookup) GetByCode(_ context.Context, code string) (*Code, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.codes[code]
	if !ok {
		return nil, ErrCodeNotFound
	}
	return &c, nil
}

func (m *MemoryLookup) GetHierarchy(_ context.Context, code string) ([]Code, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hierarchyLocked(code)
}

func (m *MemoryLookup) hierarchyLocked(code string) ([]Code, error) {
	var chain []Code
	cur := code
	for cur != "" {
		c, ok := m.codes[cur]
		if !ok {
			return nil, ErrCodeNotFound
		}
		chain = append(chain, c)
		cur = c.Parent
	}
	// Reverse to chapter-first order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func (m *MemoryLookup) GetApplicableNotes(_ context.Context, code string) ([]Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chain, err := m.hierarchyLocked(code)
	if err != nil {
		return nil, err
	}
	var notes []Note
	for _, c := range chain {
		notes = append(notes, m.notes[c.Code]...)
	}
	return notes, nil
}

func (m *MemoryLookup) SearchByKeyword(_ context.Context, text string, opts SearchOptions) ([]SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Casers are stateful; build one per call.
	fold := cases.Fold()
	terms := strings.Fields(fold.String(text))
	if len(terms) == 0 {
		return nil, nil
	}

	var results []SearchResult
	for _, c := range m.codes {
		desc := fold.String(c.Description)
		matched := false
		for _, term := range terms {
			if strings.Contains(desc, term) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		chain, err := m.hierarchyLocked(c.Code)
		if err != nil {
			return nil, err
		}
		var notes []Note
		for _, anc := range chain {
			notes = append(notes, m.notes[anc.Code]...)
		}
		if opts.ExcludeExclusions && hasMatchingExclusion(fold, notes, terms) {
			continue
		}
		results = append(results, SearchResult{Code: c, Hierarchy: chain, Notes: notes})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Code.Code < results[j].Code.Code
	})
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// hasMatchingExclusion reports whether any exclusion note mentions one of the
// search terms: such a code must not be suggested for that search.
func hasMatchingExclusion(fold cases.Caser, notes []Note, terms []string) bool {
	for _, n := range notes {
		if n.Type != NoteExclusion {
			continue
		}
		text := fold.String(n.Text)
		for _, term := range terms {
			if strings.Contains(text, term) {
				return true
			}
		}
	}
	return false
}
