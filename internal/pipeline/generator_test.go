package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/medfinder/medfinder/internal/llm"
	"github.com/medfinder/medfinder/internal/models"
)

func testNormalized() models.NormalizedQuery {
	return models.NormalizedQuery{
		CleanedQuery: "severe headache and fever",
		Symptoms:     []string{"severe headache", "fever"},
		IsValid:      true,
		Confidence:   1.0,
	}
}

func TestGenerateFencedResponse(t *testing.T) {
	mock := &llm.MockProvider{Responses: []string{
		"```json\n{\"is_medical_query\": true, \"recommendations\": [{\"chemical_formula\": \"Paracetamol\"}]}\n```",
	}}
	g := NewGenerator(mock, GeneratorConfig{Temperature: 0.2}, nil)

	candidates, _ := g.Generate(context.Background(), testNormalized(), nil, 3)
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	c := candidates[0]
	if c.Formula != "Paracetamol" {
		t.Errorf("formula = %q", c.Formula)
	}
	if c.Source != models.SourceLLM {
		t.Errorf("source = %q", c.Source)
	}
	if c.Dosage != defaultDosage {
		t.Errorf("missing dosage not defaulted: %q", c.Dosage)
	}
	if c.Warnings != defaultWarnings {
		t.Errorf("missing warnings not defaulted: %q", c.Warnings)
	}
}

func TestGenerateTruncatedResponseRepaired(t *testing.T) {
	// Missing the final closing brackets; the repair ladder must recover it.
	mock := &llm.MockProvider{Responses: []string{
		`{"is_medical_query": true, "analysis": "fever", "recommendations": [{"chemical_formula": "Ibuprofen", "dosage": "400mg"`,
	}}
	g := NewGenerator(mock, GeneratorConfig{}, nil)

	candidates, analysis := g.Generate(context.Background(), testNormalized(), nil, 3)
	if len(candidates) != 1 || candidates[0].Formula != "Ibuprofen" {
		t.Fatalf("candidates = %+v", candidates)
	}
	if candidates[0].Dosage != "400mg" {
		t.Errorf("dosage = %q", candidates[0].Dosage)
	}
	if analysis != "fever" {
		t.Errorf("analysis = %q", analysis)
	}
}

func TestGenerateNonMedicalSentinel(t *testing.T) {
	mock := &llm.MockProvider{Responses: []string{
		`{"is_medical_query": false, "recommendations": []}`,
	}}
	g := NewGenerator(mock, GeneratorConfig{}, nil)

	candidates, analysis := g.Generate(context.Background(), testNormalized(), nil, 3)
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 sentinel", len(candidates))
	}
	if candidates[0].Formula != "" {
		t.Errorf("sentinel has formula %q", candidates[0].Formula)
	}
	if analysis != nonMedicalAnalysis {
		t.Errorf("analysis = %q", analysis)
	}
}

func TestGenerateUnparseableSentinel(t *testing.T) {
	mock := &llm.MockProvider{Responses: []string{"I'm sorry, I cannot produce JSON today."}}
	g := NewGenerator(mock, GeneratorConfig{}, nil)

	candidates, analysis := g.Generate(context.Background(), testNormalized(), nil, 3)
	if len(candidates) != 1 || candidates[0].Formula != "" {
		t.Fatalf("candidates = %+v, want one sentinel", candidates)
	}
	if analysis != parseErrorAnalysis {
		t.Errorf("analysis = %q", analysis)
	}
}

func TestGenerateProviderErrorSentinel(t *testing.T) {
	mock := &llm.MockProvider{Err: errors.New("connection refused")}
	g := NewGenerator(mock, GeneratorConfig{}, nil)

	candidates, _ := g.Generate(context.Background(), testNormalized(), nil, 3)
	if len(candidates) != 1 || candidates[0].Formula != "" {
		t.Fatalf("candidates = %+v, want one sentinel", candidates)
	}
}

func TestGenerateCapsRecommendations(t *testing.T) {
	mock := &llm.MockProvider{Responses: []string{
		`{"is_medical_query": true, "recommendations": [
			{"chemical_formula": "A"}, {"chemical_formula": "B"},
			{"chemical_formula": "C"}, {"chemical_formula": "D"}]}`,
	}}
	g := NewGenerator(mock, GeneratorConfig{}, nil)

	candidates, _ := g.Generate(context.Background(), testNormalized(), nil, 10)
	if len(candidates) != maxRecommendations {
		t.Errorf("got %d candidates, want cap %d", len(candidates), maxRecommendations)
	}
}

func TestGeneratePromptContent(t *testing.T) {
	mock := &llm.MockProvider{Responses: []string{
		`{"is_medical_query": true, "recommendations": [{"chemical_formula": "X"}]}`,
	}}
	g := NewGenerator(mock, GeneratorConfig{MaxContextChunks: 2, ChunkCharBudget: 50}, nil)

	chunks := []models.RetrievedChunk{
		{Chunk: models.Chunk{Text: strings.Repeat("fever treatment ", 20)}, Score: 0.9},
		{Chunk: models.Chunk{Text: "second context"}, Score: 0.8},
		{Chunk: models.Chunk{Text: "third should be omitted"}, Score: 0.7},
	}
	g.Generate(context.Background(), testNormalized(), chunks, 3)

	if len(mock.Prompts) != 1 {
		t.Fatalf("got %d prompts", len(mock.Prompts))
	}
	prompt := mock.Prompts[0]
	if !strings.Contains(prompt, "severe headache; fever") {
		t.Error("prompt missing symptom text")
	}
	if strings.Contains(prompt, "third should be omitted") {
		t.Error("prompt includes chunk beyond the context cap")
	}
	if !strings.Contains(prompt, "is_medical_query") {
		t.Error("prompt missing output schema")
	}

	// No chunks: prompt must fall back to general knowledge framing.
	g.Generate(context.Background(), testNormalized(), nil, 3)
	if !strings.Contains(mock.Prompts[1], "use your knowledge") {
		t.Error("prompt missing no-context framing")
	}
}
