package models

import "fmt"

// NormalizedQuery is the result of cleaning and segmenting a raw symptom query.
type NormalizedQuery struct {
	CleanedQuery string   `json:"cleaned_query"`
	Symptoms     []string `json:"symptoms"`
	IsValid      bool     `json:"is_valid"`
	Confidence   float64  `json:"confidence"`
}

// SymptomRequest is the request body for the symptom search endpoint.
type SymptomRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

// Validate ensures the request has a usable query and sets defaults.
// Returns an error for empty or too-short queries; normalizes MaxResults.
func (r *SymptomRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if len(r.Query) < 3 {
		return fmt.Errorf("query too short")
	}
	if r.MaxResults <= 0 {
		r.MaxResults = 5
	}
	if r.MaxResults > 50 {
		r.MaxResults = 50
	}
	return nil
}
