package catalog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/medfinder/medfinder/internal/models"
)

func testMedicines() []models.MedicineRecord {
	return []models.MedicineRecord{
		{Name: "Calpol 500", Composition: "Paracetamol (500mg)", Price: "Rs. 15/strip"},
		{Name: "Dolo 650", Composition: "Paracetamol (650mg)", Price: "Rs. 30/strip"},
		{Name: "Crocin", Composition: "Paracetamol (500mg)", Price: "Rs. 10/strip"},
		{Name: "Brufen", Composition: "Ibuprofen (400mg)", Price: "Rs. 25/strip"},
		{Name: "Paracetamol IP", Composition: "", Price: "Rs. 5/strip"},
	}
}

func staticLoader(medicines []models.MedicineRecord) Loader {
	return func() ([]models.MedicineRecord, error) { return medicines, nil }
}

func TestMatchByComposition(t *testing.T) {
	c := New(staticLoader(testMedicines()))
	got, err := c.Match("Paracetamol", 0)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	// Matches by composition ingredient plus "Paracetamol IP" by name,
	// cheapest first.
	if len(got) != 4 {
		t.Fatalf("got %d matches, want 4", len(got))
	}
	if got[0].Name != "Paracetamol IP" || got[1].Name != "Crocin" {
		t.Errorf("order wrong: %s, %s", got[0].Name, got[1].Name)
	}
}

func TestMatchReverseSubstring(t *testing.T) {
	c := New(staticLoader(testMedicines()))
	// Query is longer than the stored composition; the reverse direction
	// must still match.
	got, err := c.Match("Ibuprofen (400mg) film coated", 0)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Brufen" {
		t.Errorf("got %v, want Brufen", got)
	}
}

func TestMatchAcrossDosageVariants(t *testing.T) {
	c := New(staticLoader([]models.MedicineRecord{
		{Name: "Dolo 650", Composition: "Paracetamol (650mg)", Price: "Rs. 30/strip"},
		{Name: "Generic", Composition: "Paracetamol 500 mg", Price: "Rs. 8/strip"},
	}))
	// Dosage differences and formatting must not block a match; only the
	// active ingredient is compared.
	got, err := c.Match("Paracetamol (500mg)", 0)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].Name != "Generic" {
		t.Errorf("cheapest first, got %q", got[0].Name)
	}
}

func TestMatchLimit(t *testing.T) {
	c := New(staticLoader(testMedicines()))
	got, err := c.Match("Paracetamol", 2)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d matches, want 2", len(got))
	}
}

func TestMatchNoResults(t *testing.T) {
	c := New(staticLoader(testMedicines()))
	got, err := c.Match("Azithromycin", 0)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d matches, want 0", len(got))
	}
}

func TestInvalidateReloads(t *testing.T) {
	loads := 0
	c := New(func() ([]models.MedicineRecord, error) {
		loads++
		return testMedicines(), nil
	})
	if _, err := c.Medicines(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Medicines(); err != nil {
		t.Fatal(err)
	}
	if loads != 1 {
		t.Fatalf("loads = %d after cached reads, want 1", loads)
	}
	c.Invalidate()
	if _, err := c.Medicines(); err != nil {
		t.Fatal(err)
	}
	if loads != 2 {
		t.Errorf("loads = %d after invalidate, want 2", loads)
	}
}

func TestLoaderError(t *testing.T) {
	wantErr := errors.New("backing store down")
	c := New(func() ([]models.MedicineRecord, error) { return nil, wantErr })
	if _, err := c.Medicines(); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestJSONLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	data, err := json.Marshal(testMedicines())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	c := NewFromFile(path)
	medicines, err := c.Medicines()
	if err != nil {
		t.Fatalf("Medicines: %v", err)
	}
	if len(medicines) != 5 {
		t.Errorf("got %d medicines, want 5", len(medicines))
	}
	names, err := c.Names()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 5 {
		t.Errorf("got %d names, want 5", len(names))
	}
}

func TestSimilarMedicines(t *testing.T) {
	c := New(staticLoader(testMedicines()))
	got, err := c.SimilarMedicines("Dolo 650", 0)
	if err != nil {
		t.Fatalf("SimilarMedicines: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d similar, want 2", len(got))
	}
	if got[0].Name != "Crocin" {
		t.Errorf("cheapest similar = %s, want Crocin", got[0].Name)
	}
	for _, m := range got {
		if m.Name == "Dolo 650" {
			t.Error("result contains the queried medicine itself")
		}
	}
}

func TestSimilarMedicinesUnknown(t *testing.T) {
	c := New(staticLoader(testMedicines()))
	if _, err := c.SimilarMedicines("Nonexistol", 0); err == nil {
		t.Fatal("expected error for unknown medicine")
	}
}
