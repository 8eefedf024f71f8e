package rag

import (
	"context"
	"testing"

	"github.com/medfinder/medfinder/internal/embedding"
	"github.com/medfinder/medfinder/internal/models"
)

func testChunks() []models.Chunk {
	return []models.Chunk{
		{ID: "c1", Text: "Paracetamol 500mg is used for fever and mild pain relief."},
		{ID: "c2", Text: "Ibuprofen is a nonsteroidal anti-inflammatory drug."},
		{ID: "c3", Text: "Loratadine treats allergy symptoms such as sneezing."},
	}
}

func TestIndexer_PositionAlignment(t *testing.T) {
	ctx := context.Background()
	idx := NewIndexer(embedding.NewMockEmbedder(32), 2)

	chunks := testChunks()
	index, store, err := idx.Build(ctx, chunks)
	if err != nil {
		t.Fatal(err)
	}
	if index.Size() != len(chunks) || store.Len() != len(chunks) {
		t.Fatalf("index size %d, store size %d, want %d", index.Size(), store.Len(), len(chunks))
	}
	for i, chunk := range chunks {
		got, ok := store.Get(i)
		if !ok {
			t.Fatalf("no metadata at position %d", i)
		}
		if got.ID != chunk.ID {
			t.Errorf("position %d: got chunk %s, want %s", i, got.ID, chunk.ID)
		}
	}
}

func TestIndexer_EmptyTextKeepsSlot(t *testing.T) {
	ctx := context.Background()
	idx := NewIndexer(embedding.NewMockEmbedder(16), 10)

	chunks := []models.Chunk{
		{ID: "a", Text: "fever treatment"},
		{ID: "b", Text: ""},
		{ID: "c", Text: "cough syrup"},
	}
	index, store, err := idx.Build(ctx, chunks)
	if err != nil {
		t.Fatal(err)
	}
	if index.Size() != 3 || store.Len() != 3 {
		t.Fatalf("empty chunk must consume a slot: index %d, store %d", index.Size(), store.Len())
	}
	if got, _ := store.Get(1); got.ID != "b" {
		t.Errorf("position 1 should hold the empty chunk, got %s", got.ID)
	}
}

func TestIndexer_BatchFailureDoesNotAbort(t *testing.T) {
	ctx := context.Background()
	mock := embedding.NewMockEmbedder(16)
	mock.FailBatches = true
	idx := NewIndexer(mock, 2)

	chunks := testChunks()
	index, store, err := idx.Build(ctx, chunks)
	if err != nil {
		t.Fatalf("build must survive batch failures: %v", err)
	}
	if index.Size() != len(chunks) || store.Len() != len(chunks) {
		t.Errorf("fallback vectors must preserve alignment: index %d, store %d", index.Size(), store.Len())
	}
}

func TestIndexer_RebuildIdempotent(t *testing.T) {
	ctx := context.Background()
	idx := NewIndexer(embedding.NewMockEmbedder(32), 2)
	chunks := testChunks()

	index1, store1, err := idx.Build(ctx, chunks)
	if err != nil {
		t.Fatal(err)
	}
	index2, store2, err := idx.Build(ctx, chunks)
	if err != nil {
		t.Fatal(err)
	}
	if index1.Size() != index2.Size() || store1.Len() != store2.Len() {
		t.Error("rebuild produced different sizes")
	}

	ret1, _ := NewRetriever(embedding.NewMockEmbedder(32), index1, store1)
	ret2, _ := NewRetriever(embedding.NewMockEmbedder(32), index2, store2)
	r1, _ := ret1.Retrieve(ctx, "fever", 3)
	r2, _ := ret2.Retrieve(ctx, "fever", 3)
	if len(r1) != len(r2) {
		t.Fatal("rebuild changed retrieval result count")
	}
	for i := range r1 {
		if r1[i].Chunk.ID != r2[i].Chunk.ID || r1[i].Score != r2[i].Score {
			t.Errorf("rebuild changed result %d", i)
		}
	}
}
