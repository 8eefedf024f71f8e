package suggest

import (
	"sort"
	"strings"
	"sync"
)

// Candidate is one suggested medicine name with its ranking score.
type Candidate struct {
	Name     string
	Distance int
	Score    float64
}

// FuzzyMatcher suggests catalog medicine names within a bounded edit
// distance of a query. Names are cached lowercased for comparison.
type FuzzyMatcher struct {
	names       func() ([]string, error)
	maxDistance int

	mu        sync.RWMutex
	cache     []string
	lowered   []string
	cacheOK   bool
}

// FuzzyOption configures a FuzzyMatcher.
type FuzzyOption func(*FuzzyMatcher)

// WithMaxDistance sets the maximum edit distance for a name to qualify.
func WithMaxDistance(d int) FuzzyOption {
	return func(m *FuzzyMatcher) {
		if d > 0 {
			m.maxDistance = d
		}
	}
}

// NewFuzzyMatcher creates a matcher over the names produced by names().
func NewFuzzyMatcher(names func() ([]string, error), opts ...FuzzyOption) *FuzzyMatcher {
	m := &FuzzyMatcher{
		names:       names,
		maxDistance: 2,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RefreshCache re-reads the name list. Call after the catalog reloads.
func (m *FuzzyMatcher) RefreshCache() error {
	names, err := m.names()
	if err != nil {
		return err
	}
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}
	m.mu.Lock()
	m.cache = names
	m.lowered = lowered
	m.cacheOK = true
	m.mu.Unlock()
	return nil
}

// Invalidate drops the cached name list.
func (m *FuzzyMatcher) Invalidate() {
	m.mu.Lock()
	m.cacheOK = false
	m.mu.Unlock()
}

// Suggest returns up to limit names within maxDistance of query, best first.
// Exact matches return themselves with distance 0 at the head. Ties on score
// break alphabetically so output is deterministic.
func (m *FuzzyMatcher) Suggest(query string, limit int) ([]Candidate, error) {
	m.mu.RLock()
	ok := m.cacheOK
	m.mu.RUnlock()
	if !ok {
		if err := m.RefreshCache(); err != nil {
			return nil, err
		}
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var candidates []Candidate
	for i, low := range m.lowered {
		d := levenshteinDistance(q, low)
		if d > m.maxDistance {
			continue
		}
		candidates = append(candidates, Candidate{
			Name:     m.cache[i],
			Distance: d,
			Score:    scoreCandidate(q, low, d),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Name < candidates[j].Name
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// scoreCandidate ranks by closeness with a bonus for shared prefixes, which
// matter more than tail typos for drug names.
func scoreCandidate(query, name string, distance int) float64 {
	maxLen := len(query)
	if len(name) > maxLen {
		maxLen = len(name)
	}
	if maxLen == 0 {
		return 0
	}
	score := 1.0 - float64(distance)/float64(maxLen)
	if strings.HasPrefix(name, query) || strings.HasPrefix(query, name) {
		score += 0.25
	}
	return score
}
