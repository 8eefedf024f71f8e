// Package models defines core data structures for corpus chunks, queries, and recommendations.
package models

// Chunk is a unit of corpus text with a stable identifier.
// Chunks are immutable once indexed; retrieval results reference them by index position.
type Chunk struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// RetrievedChunk is a chunk plus its similarity score for one query.
// Score is the inner product of L2-normalized vectors, so it lies in [-1, 1].
type RetrievedChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
