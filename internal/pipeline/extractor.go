package pipeline

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/medfinder/medfinder/internal/models"
)

// formulaPatterns match "Name (dosage)" and "Name dosage" shapes in corpus
// text, in priority order. Matching is case-insensitive so lowercase book
// text still yields candidates; first occurrence of a formula wins.
var formulaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([a-z][a-z]+(?:\s+[a-z][a-z]+)*)\s*\((\d+\s*mg|mg)\)`),
	regexp.MustCompile(`(?i)([a-z][a-z]+(?:\s+[a-z][a-z]+)*)\s+(\d+\s*mg)\b`),
}

// Extractor pulls formula+dosage candidates out of retrieved text with
// regular expressions, the fast deterministic alternative to the generative
// path. Every match carries the same fixed confidence.
type Extractor struct {
	confidence float64
}

// NewExtractor returns an extractor assigning confidence to each match.
func NewExtractor(confidence float64) *Extractor {
	return &Extractor{confidence: confidence}
}

// Extract returns formula candidates found in text, deduplicated by formula
// string in pattern-priority order.
func (e *Extractor) Extract(text string) []models.FormulaCandidate {
	seen := make(map[string]struct{})
	var candidates []models.FormulaCandidate
	for _, pattern := range formulaPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			name := titleWords(strings.TrimSpace(m[1]))
			dosage := strings.TrimSpace(m[2])
			formula := name + " (" + dosage + ")"
			if _, dup := seen[formula]; dup {
				continue
			}
			seen[formula] = struct{}{}
			candidates = append(candidates, models.FormulaCandidate{
				Formula:    formula,
				Confidence: e.confidence,
				Source:     models.SourceRegex,
				Rank:       len(candidates) + 1,
				Dosage:     dosage,
			})
		}
	}
	return candidates
}

// ExtractFromChunks runs extraction over each retrieved chunk in score order
// and merges the results, deduplicating across chunks.
func (e *Extractor) ExtractFromChunks(chunks []models.RetrievedChunk) []models.FormulaCandidate {
	seen := make(map[string]struct{})
	var merged []models.FormulaCandidate
	for _, rc := range chunks {
		for _, c := range e.Extract(rc.Chunk.Text) {
			if _, dup := seen[c.Formula]; dup {
				continue
			}
			seen[c.Formula] = struct{}{}
			c.Rank = len(merged) + 1
			merged = append(merged, c)
		}
	}
	return merged
}

// titleWords uppercases the first letter of each word and lowercases the
// rest, so "paracetamol" and "PARACETAMOL" both display as "Paracetamol".
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// TopConfidence returns the highest confidence among candidates, or 0.
func TopConfidence(candidates []models.FormulaCandidate) float64 {
	var top float64
	for _, c := range candidates {
		if c.Confidence > top {
			top = c.Confidence
		}
	}
	return top
}
