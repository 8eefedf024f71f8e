package interactions

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentLookups bounds fan-out across pairwise label queries.
const maxConcurrentLookups = 4

// PairResult is the verdict for one drug pair.
type PairResult struct {
	DrugA  string `json:"drug_a"`
	DrugB  string `json:"drug_b"`
	Status Status `json:"status"`
}

// Checker answers interaction questions over a label source.
type Checker struct {
	client *LabelClient
}

// NewChecker creates a checker over client.
func NewChecker(client *LabelClient) *Checker {
	return &Checker{client: client}
}

// CheckPair queries both directions concurrently (a's label mentioning b,
// and b's label mentioning a) and combines the verdicts: any mention is an
// interaction; both clean labels mean none; anything else is unknown.
func (c *Checker) CheckPair(ctx context.Context, a, b string) Status {
	var ab, ba Status
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ab = c.client.Mentions(gctx, a, b)
		return nil
	})
	g.Go(func() error {
		ba = c.client.Mentions(gctx, b, a)
		return nil
	})
	_ = g.Wait()

	switch {
	case ab == StatusInteraction || ba == StatusInteraction:
		return StatusInteraction
	case ab == StatusNone && ba == StatusNone:
		return StatusNone
	default:
		return StatusUnknown
	}
}

// CheckAll checks every unordered pair among names with bounded concurrency.
// Results are ordered by pair position, independent of completion order.
func (c *Checker) CheckAll(ctx context.Context, names []string) []PairResult {
	type indexedPair struct {
		i, j int
	}
	var pairs []indexedPair
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			pairs = append(pairs, indexedPair{i, j})
		}
	}

	results := make([]PairResult, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for idx, p := range pairs {
		idx, p := idx, p
		g.Go(func() error {
			results[idx] = PairResult{
				DrugA:  names[p.i],
				DrugB:  names[p.j],
				Status: c.CheckPair(gctx, names[p.i], names[p.j]),
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].DrugA != results[j].DrugA {
			return results[i].DrugA < results[j].DrugA
		}
		return results[i].DrugB < results[j].DrugB
	})
	return results
}
