package pipeline

import (
	"reflect"
	"testing"

	"github.com/medfinder/medfinder/internal/models"
)

func TestExtractParenthesizedDosage(t *testing.T) {
	e := NewExtractor(0.8)
	got := e.Extract("For fever, Paracetamol (500mg) is commonly used.")
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	c := got[0]
	if c.Formula != "Paracetamol (500mg)" {
		t.Errorf("formula = %q", c.Formula)
	}
	if c.Dosage != "500mg" {
		t.Errorf("dosage = %q", c.Dosage)
	}
	if c.Confidence != 0.8 || c.Source != models.SourceRegex {
		t.Errorf("confidence/source = %v/%s", c.Confidence, c.Source)
	}
}

func TestExtractBareDosage(t *testing.T) {
	e := NewExtractor(0.8)
	got := e.Extract("Adults: Ibuprofen 400 mg after meals.")
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Formula != "Ibuprofen (400 mg)" {
		t.Errorf("formula = %q", got[0].Formula)
	}
	if got[0].Dosage != "400 mg" {
		t.Errorf("dosage = %q", got[0].Dosage)
	}
}

func TestExtractLowercaseText(t *testing.T) {
	// Corpus chunks from extracted books are often all-lowercase; the
	// ingredient must still be found and title-cased for display.
	e := NewExtractor(0.8)
	got := e.Extract("for fever, paracetamol (500mg) twice daily")
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Formula != "Paracetamol (500mg)" {
		t.Errorf("formula = %q", got[0].Formula)
	}
}

func TestExtractTitleCasesName(t *testing.T) {
	e := NewExtractor(0.8)
	got := e.Extract("MEFENAMIC ACID (250mg) tablets")
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Formula != "Mefenamic Acid (250mg)" {
		t.Errorf("formula = %q", got[0].Formula)
	}
}

func TestExtractDeduplicates(t *testing.T) {
	e := NewExtractor(0.8)
	text := "Paracetamol (500mg) twice daily. Repeat: Paracetamol (500mg)."
	got := e.Extract(text)
	if len(got) != 1 {
		t.Errorf("got %d candidates, want 1 after dedup", len(got))
	}
}

func TestExtractDeterministic(t *testing.T) {
	e := NewExtractor(0.8)
	text := "Paracetamol (500mg), Ibuprofen (400mg), Aspirin 325 mg."
	first := e.Extract(text)
	for i := 0; i < 5; i++ {
		if got := e.Extract(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v vs %v", i, got, first)
		}
	}
	if len(first) != 3 {
		t.Errorf("got %d candidates, want 3", len(first))
	}
	for i, c := range first {
		if c.Rank != i+1 {
			t.Errorf("candidate %d rank = %d", i, c.Rank)
		}
	}
}

func TestExtractNoMatch(t *testing.T) {
	e := NewExtractor(0.8)
	if got := e.Extract("rest and drink plenty of fluids"); len(got) != 0 {
		t.Errorf("got %d candidates, want 0", len(got))
	}
}

func TestExtractFromChunks(t *testing.T) {
	e := NewExtractor(0.8)
	chunks := []models.RetrievedChunk{
		{Chunk: models.Chunk{ID: "a", Text: "Paracetamol (500mg) for fever."}, Score: 0.9},
		{Chunk: models.Chunk{ID: "b", Text: "Paracetamol (500mg) again, Cetirizine 10 mg for allergy."}, Score: 0.8},
	}
	got := e.ExtractFromChunks(chunks)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].Formula != "Paracetamol (500mg)" || got[1].Formula != "Cetirizine (10 mg)" {
		t.Errorf("formulas = %q, %q", got[0].Formula, got[1].Formula)
	}
	if got[1].Rank != 2 {
		t.Errorf("second candidate rank = %d, want 2", got[1].Rank)
	}
}

func TestTopConfidence(t *testing.T) {
	if got := TopConfidence(nil); got != 0 {
		t.Errorf("TopConfidence(nil) = %v", got)
	}
	candidates := []models.FormulaCandidate{{Confidence: 0.4}, {Confidence: 0.8}, {Confidence: 0.6}}
	if got := TopConfidence(candidates); got != 0.8 {
		t.Errorf("TopConfidence = %v, want 0.8", got)
	}
}
