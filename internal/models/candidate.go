package models

// Candidate sources.
const (
	SourceRegex = "regex"
	SourceLLM   = "llm"
)

// FormulaCandidate is a suggested active ingredient, produced by the regex
// extractor or the generative model and consumed by the catalog matcher.
type FormulaCandidate struct {
	Formula        string  `json:"formula"`
	Confidence     float64 `json:"confidence"`
	Source         string  `json:"source"`
	Rank           int     `json:"rank,omitempty"`
	Dosage         string  `json:"dosage,omitempty"`
	Reason         string  `json:"reason,omitempty"`
	Warnings       string  `json:"warnings,omitempty"`
	RequiresDoctor bool    `json:"requires_doctor,omitempty"`
}
