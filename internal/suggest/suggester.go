package suggest

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result is the combined suggestion outcome for one queried name.
type Result struct {
	Query       string   `json:"query"`
	Valid       bool     `json:"valid"`
	Suggestions []string `json:"suggestions"`
}

// Suggester fans a name query out to the generative validator, the local
// fuzzy matcher, and the lexical index concurrently, then merges their
// answers in fixed priority order: generative correction first, then fuzzy
// catalog matches, then lexical hits. The merged order is deterministic
// regardless of which source answers first.
type Suggester struct {
	validator *Validator
	fuzzy     *FuzzyMatcher
	lexical   *NameIndex
	limit     int
	logger    *zap.Logger
}

// NewSuggester wires the three sources. Any of them may be nil; missing
// sources simply contribute nothing.
func NewSuggester(validator *Validator, fuzzy *FuzzyMatcher, lexical *NameIndex, limit int, logger *zap.Logger) *Suggester {
	if limit <= 0 {
		limit = 5
	}
	return &Suggester{
		validator: validator,
		fuzzy:     fuzzy,
		lexical:   lexical,
		limit:     limit,
		logger:    logger,
	}
}

// Suggest looks up name against all sources. A failed source is logged and
// skipped; it never fails the whole lookup.
func (s *Suggester) Suggest(ctx context.Context, name string) Result {
	var (
		verdict Validation
		local   []Candidate
		lexHits []string
	)

	g, gctx := errgroup.WithContext(ctx)
	if s.validator != nil {
		g.Go(func() error {
			v, err := s.validator.Validate(gctx, name)
			if err != nil {
				s.warn("generative validation failed", err)
				return nil
			}
			verdict = v
			return nil
		})
	}
	if s.fuzzy != nil {
		g.Go(func() error {
			c, err := s.fuzzy.Suggest(name, s.limit)
			if err != nil {
				s.warn("fuzzy suggestion failed", err)
				return nil
			}
			local = c
			return nil
		})
	}
	if s.lexical != nil {
		g.Go(func() error {
			hits, err := s.lexical.Suggest(name, s.limit)
			if err != nil {
				s.warn("lexical suggestion failed", err)
				return nil
			}
			lexHits = hits
			return nil
		})
	}
	_ = g.Wait()

	if verdict.Valid {
		return Result{Query: name, Valid: true}
	}

	seen := make(map[string]struct{})
	var merged []string
	add := func(candidate string) {
		key := strings.ToLower(strings.TrimSpace(candidate))
		if key == "" || key == strings.ToLower(strings.TrimSpace(name)) {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		merged = append(merged, candidate)
	}

	for _, c := range verdict.Suggestions {
		add(c)
	}
	for _, c := range local {
		add(c.Name)
	}
	for _, c := range lexHits {
		add(c)
	}
	if len(merged) > s.limit {
		merged = merged[:s.limit]
	}

	// An exact fuzzy hit means the name exists in the catalog even when the
	// generative source was unavailable.
	valid := false
	for _, c := range local {
		if c.Distance == 0 {
			valid = true
			break
		}
	}
	return Result{Query: name, Valid: valid, Suggestions: merged}
}

func (s *Suggester) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, zap.Error(err))
	}
}
