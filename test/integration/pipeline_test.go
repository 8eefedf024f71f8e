// Package integration exercises the full pipeline against real on-disk index
// artifacts, with the embedding and generative providers mocked.
package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/medfinder/medfinder/internal/catalog"
	"github.com/medfinder/medfinder/internal/embedding"
	"github.com/medfinder/medfinder/internal/llm"
	"github.com/medfinder/medfinder/internal/models"
	"github.com/medfinder/medfinder/internal/pipeline"
	"github.com/medfinder/medfinder/internal/rag"
)

const testDimensions = 16

func corpusChunks() []models.Chunk {
	return []models.Chunk{
		{ID: "fever_1", Text: "For fever and mild pain, Paracetamol (500mg) is the first choice.", Metadata: map[string]interface{}{"source": "handbook"}},
		{ID: "pain_1", Text: "Ibuprofen (400mg) relieves inflammatory pain and swelling.", Metadata: map[string]interface{}{"source": "handbook"}},
		{ID: "allergy_1", Text: "Cetirizine 10 mg treats allergy symptoms such as rash and itching.", Metadata: map[string]interface{}{"source": "handbook"}},
	}
}

func testCatalog() *catalog.Catalog {
	return catalog.New(func() ([]models.MedicineRecord, error) {
		return []models.MedicineRecord{
			{Name: "Crocin", Composition: "Paracetamol (500mg)", Price: "Rs. 10/strip"},
			{Name: "Calpol 500", Composition: "Paracetamol (500mg)", Price: "Rs. 15/strip"},
			{Name: "Brufen", Composition: "Ibuprofen (400mg)", Price: "Rs. 25/strip"},
			{Name: "Alerid", Composition: "Cetirizine (10mg)", Price: "Rs. 18/strip"},
		}, nil
	})
}

func buildArtifacts(t *testing.T, embedder embedding.Embedder) (string, string) {
	t.Helper()
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "corpus.index")
	metadataPath := filepath.Join(dir, "corpus_meta.json")

	indexer := rag.NewIndexer(embedder, 2)
	idx, store, err := indexer.Build(context.Background(), corpusChunks())
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	if err := rag.SaveArtifacts(idx, store, indexPath, metadataPath); err != nil {
		t.Fatalf("save artifacts: %v", err)
	}
	return indexPath, metadataPath
}

func TestPipelineEndToEnd(t *testing.T) {
	embedder := embedding.NewMockEmbedder(testDimensions)
	indexPath, metadataPath := buildArtifacts(t, embedder)

	idx, store, err := rag.LoadArtifacts(testDimensions, indexPath, metadataPath)
	if err != nil {
		t.Fatalf("load artifacts: %v", err)
	}
	retriever, err := rag.NewRetriever(embedder, idx, store)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	orch := pipeline.NewOrchestrator(retriever, nil, testCatalog(), pipeline.Options{
		TopK:            3,
		MinScore:        0.5,
		HighConfidence:  0.7,
		RegexConfidence: 0.8,
		MatchLimit:      10,
	}, nil)

	// Querying with the exact corpus text guarantees a rank-1 retrieval hit
	// with the deterministic mock embedder.
	resp := orch.Search(context.Background(), "For fever and mild pain, Paracetamol (500mg) is the first choice.", 5)

	if !resp.RAGUsed {
		t.Fatal("expected retrieval to be used")
	}
	if len(resp.Recommendations) == 0 {
		t.Fatalf("no recommendations; log = %+v", resp.Log)
	}
	group := resp.Recommendations[0]
	if group.Formula != "Paracetamol (500mg)" {
		t.Errorf("formula = %q", group.Formula)
	}
	if group.Count != 2 {
		t.Errorf("count = %d, want both paracetamol brands", group.Count)
	}
	if group.Medicines[0].Name != "Crocin" {
		t.Errorf("cheapest first, got %q", group.Medicines[0].Name)
	}
	for i := 1; i < len(group.Medicines); i++ {
		if catalog.ParsePrice(group.Medicines[i-1].Price) > catalog.ParsePrice(group.Medicines[i].Price) {
			t.Errorf("medicines not price-ascending at %d", i)
		}
	}
}

func TestPipelineGenerativeFallback(t *testing.T) {
	embedder := embedding.NewMockEmbedder(testDimensions)
	indexPath, metadataPath := buildArtifacts(t, embedder)

	idx, store, err := rag.LoadArtifacts(testDimensions, indexPath, metadataPath)
	if err != nil {
		t.Fatalf("load artifacts: %v", err)
	}
	retriever, err := rag.NewRetriever(embedder, idx, store)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	gen := pipeline.NewGenerator(&llm.MockProvider{Responses: []string{
		`{"is_medical_query": true, "analysis": "allergic reaction", "recommendations": [{"chemical_formula": "Cetirizine", "dosage": "10mg once daily"}]}`,
	}}, pipeline.GeneratorConfig{}, nil)

	orch := pipeline.NewOrchestrator(retriever, gen, testCatalog(), pipeline.Options{
		TopK:            3,
		MinScore:        0.99, // filter out every chunk so extraction finds nothing
		HighConfidence:  0.999,
		RegexConfidence: 0.8,
		FallbackEnabled: true,
		MatchLimit:      10,
	}, nil)

	resp := orch.Search(context.Background(), "itchy rash and swelling", 5)
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].Formula != "Cetirizine" {
		t.Fatalf("recommendations = %+v; log = %+v", resp.Recommendations, resp.Log)
	}
	if resp.Analysis != "allergic reaction" {
		t.Errorf("analysis = %q", resp.Analysis)
	}
	if resp.Recommendations[0].Dosage != "10mg once daily" {
		t.Errorf("dosage = %q", resp.Recommendations[0].Dosage)
	}
}
