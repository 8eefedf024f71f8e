// Package pipeline implements the symptom search pipeline: query
// normalization, retrieval, formula extraction, the generative fallback,
// catalog matching, and response shaping, wired together by the Orchestrator.
package pipeline

import (
	"strings"
	"unicode"

	"github.com/medfinder/medfinder/internal/models"
	"github.com/medfinder/medfinder/pkg/utils"
)

// fillerWords are stripped from queries before segmentation.
var fillerWords = map[string]struct{}{
	"i": {}, "have": {}, "a": {}, "an": {}, "the": {},
	"my": {}, "me": {}, "am": {}, "is": {},
}

// medicalKeywords score a phrase as medically relevant when any word matches.
var medicalKeywords = map[string]struct{}{
	"pain": {}, "ache": {}, "fever": {}, "cough": {}, "cold": {},
	"nausea": {}, "vomit": {}, "diarrhea": {}, "headache": {},
	"stomach": {}, "chest": {}, "throat": {}, "dizzy": {},
	"infection": {}, "allergy": {}, "rash": {}, "itch": {},
	"sore": {}, "swelling": {}, "pressure": {}, "diabetes": {},
	"high": {}, "low": {}, "blood": {},
}

// validConfidenceThreshold is the minimum confidence for a query to count
// as a medical symptom description.
const validConfidenceThreshold = 0.3

// Normalizer cleans and segments raw symptom queries. Deterministic,
// synchronous, no I/O.
type Normalizer struct{}

// NewNormalizer returns a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize lowercases the query, strips punctuation and filler words,
// segments it into symptom phrases, and scores medical relevance.
func (n *Normalizer) Normalize(rawQuery string) models.NormalizedQuery {
	cleaned := cleanQuery(rawQuery)
	symptoms := splitSymptoms(cleaned)

	if len(symptoms) == 0 {
		return models.NormalizedQuery{
			CleanedQuery: cleaned,
			Symptoms:     []string{},
			IsValid:      false,
			Confidence:   0.0,
		}
	}

	matched := 0
	for _, phrase := range symptoms {
		if containsMedicalKeyword(phrase) {
			matched++
		}
	}
	confidence := utils.Clip01(float64(matched) / float64(len(symptoms)))

	return models.NormalizedQuery{
		CleanedQuery: cleaned,
		Symptoms:     symptoms,
		IsValid:      confidence > validConfidenceThreshold,
		Confidence:   confidence,
	}
}

// cleanQuery lowercases, strips punctuation, and removes filler words.
// Commas survive as phrase separators.
func cleanQuery(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch {
		case r == ',':
			b.WriteRune(r)
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	var kept []string
	for _, w := range strings.Fields(b.String()) {
		bare := strings.Trim(w, ",")
		if _, filler := fillerWords[bare]; filler && bare == w {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// splitSymptoms segments a cleaned query into phrases on "and", "with",
// and commas, dropping empties.
func splitSymptoms(cleaned string) []string {
	normalized := strings.ReplaceAll(cleaned, ",", " and ")
	normalized = strings.ReplaceAll(normalized, " with ", " and ")
	var symptoms []string
	for _, part := range strings.Split(normalized, " and ") {
		part = utils.CollapseWhitespace(strings.TrimSpace(part))
		if part != "" {
			symptoms = append(symptoms, part)
		}
	}
	return symptoms
}

func containsMedicalKeyword(phrase string) bool {
	for _, w := range strings.Fields(phrase) {
		if _, ok := medicalKeywords[w]; ok {
			return true
		}
	}
	return false
}
