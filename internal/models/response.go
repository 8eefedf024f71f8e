package models

import "time"

// PriceRange is the min/max of parseable prices within one match group.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MatchGroup aggregates the catalog matches for one formula, price-ascending.
type MatchGroup struct {
	Formula           string           `json:"formula"`
	Medicines         []MedicineRecord `json:"medicines"`
	Count             int              `json:"medicine_count"`
	PriceRange        PriceRange       `json:"price_range"`
	SavingsPercentage float64          `json:"savings_percentage"`
	Dosage            string           `json:"dosage,omitempty"`
	Reason            string           `json:"reason,omitempty"`
	Warnings          string           `json:"warnings,omitempty"`
	RequiresDoctor    bool             `json:"requires_doctor,omitempty"`
}

// Summary carries aggregate figures across all match groups.
type Summary struct {
	TotalFormulas       int    `json:"total_formulas"`
	MaxSavingsPotential string `json:"max_savings_potential"`
	OriginalQuery       string `json:"original_query"`
}

// StageResult is one entry in the pipeline execution log. The log is part of
// the public response contract, not incidental debug output.
type StageResult struct {
	Stage     string    `json:"stage"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
}

// Stage statuses.
const (
	StageSuccess = "success"
	StageError   = "error"
)

// SearchResponse is the envelope returned by the symptom search pipeline.
// It is always syntactically well-formed; degraded stages reduce richness,
// never the shape.
type SearchResponse struct {
	Recommendations []MatchGroup  `json:"recommendations"`
	Analysis        string        `json:"analysis,omitempty"`
	Summary         Summary       `json:"summary"`
	RAGUsed         bool          `json:"rag_used"`
	RAGChunks       int           `json:"rag_chunks"`
	QueryTime       int64         `json:"query_time_ms"`
	Log             []StageResult `json:"execution_log"`
}
