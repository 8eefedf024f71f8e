package rag

import (
	"context"
	"fmt"

	"github.com/medfinder/medfinder/internal/embedding"
	"github.com/medfinder/medfinder/internal/models"
	"github.com/medfinder/medfinder/internal/vector"
	"github.com/medfinder/medfinder/pkg/utils"
)

// Retriever embeds a query through the same path as indexing and searches the
// flat index. It returns ranked chunks without applying any score threshold;
// that policy belongs to the caller so it can vary per call-site.
type Retriever struct {
	embedder embedding.Embedder
	index    *vector.FlatIndex
	store    *MetadataStore
}

// NewRetriever creates a retriever over the given index/metadata pair.
func NewRetriever(embedder embedding.Embedder, index *vector.FlatIndex, store *MetadataStore) (*Retriever, error) {
	if index.Size() != store.Len() {
		return nil, ErrCorruptedIndex
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		store:    store,
	}, nil
}

// Retrieve returns up to topK chunks ranked by descending similarity.
// Positions with no metadata entry are dropped.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	utils.NormalizeL2(vec)

	hits, err := r.index.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]models.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 {
			continue
		}
		chunk, ok := r.store.Get(hit.Position)
		if !ok {
			continue
		}
		results = append(results, models.RetrievedChunk{Chunk: chunk, Score: hit.Score})
	}
	return results, nil
}

// Size returns the number of indexed chunks.
func (r *Retriever) Size() int {
	return r.index.Size()
}

// FilterByScore returns the chunks at or above the threshold, preserving order.
func FilterByScore(chunks []models.RetrievedChunk, minScore float64) []models.RetrievedChunk {
	out := make([]models.RetrievedChunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Score >= minScore {
			out = append(out, c)
		}
	}
	return out
}

// Sufficient reports whether filtered retrieval results are strong enough to
// rely on: at least one chunk, with the best score at or above the stricter
// high-confidence threshold.
func Sufficient(filtered []models.RetrievedChunk, highConfidence float64) bool {
	return len(filtered) > 0 && filtered[0].Score >= highConfidence
}
