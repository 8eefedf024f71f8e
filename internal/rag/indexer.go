package rag

import (
	"context"
	"fmt"

	"github.com/medfinder/medfinder/internal/embedding"
	"github.com/medfinder/medfinder/internal/models"
	"github.com/medfinder/medfinder/internal/vector"
	"github.com/medfinder/medfinder/pkg/utils"
	"go.uber.org/zap"
)

// Indexer builds the vector index and metadata map over corpus chunks.
type Indexer struct {
	embedder  embedding.Embedder
	batchSize int
	logger    *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithIndexerLogger sets a logger for build progress and batch failures.
func WithIndexerLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer. batchSize controls how many chunks are
// embedded per request; it affects performance only, never the result.
func NewIndexer(embedder embedding.Embedder, batchSize int, opts ...IndexerOption) *Indexer {
	if batchSize <= 0 {
		batchSize = 32
	}
	idx := &Indexer{
		embedder:  embedder,
		batchSize: batchSize,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Build embeds all chunks in input order and returns an aligned index/metadata
// pair: the vector at position i always belongs to metadata entry i. A failed
// embedding batch is logged and its positions filled with fallback vectors,
// never aborting the whole build. Empty-text chunks keep their slot the same way.
func (idx *Indexer) Build(ctx context.Context, chunks []models.Chunk) (*vector.FlatIndex, *MetadataStore, error) {
	index, err := vector.NewFlatIndex(idx.embedder.Dimensions())
	if err != nil {
		return nil, nil, err
	}
	store := NewMetadataStore()

	for start := 0; start < len(chunks); start += idx.batchSize {
		end := start + idx.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vecs, err := idx.embedder.EmbedBatch(ctx, texts)
		if err != nil || len(vecs) != len(batch) {
			if idx.logger != nil {
				idx.logger.Warn("embedding batch failed, filling with fallback vectors",
					zap.Int("batch_start", start), zap.Int("batch_size", len(batch)), zap.Error(err))
			}
			vecs = make([][]float32, len(batch))
			for i, text := range texts {
				vecs[i] = embedding.FallbackVector(text, idx.embedder.Dimensions())
			}
		}

		for i, vec := range vecs {
			utils.NormalizeL2(vec)
			if err := index.Add(ctx, [][]float32{vec}); err != nil {
				return nil, nil, fmt.Errorf("add vector at position %d: %w", start+i, err)
			}
			store.Put(start+i, batch[i])
		}

		if idx.logger != nil {
			idx.logger.Debug("indexed batch", zap.Int("through", end), zap.Int("total", len(chunks)))
		}
	}

	if index.Size() != store.Len() {
		return nil, nil, ErrCorruptedIndex
	}
	return index, store, nil
}
