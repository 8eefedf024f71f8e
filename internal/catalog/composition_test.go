package catalog

import "testing"

func TestNormalizeComposition(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Paracetamol 500mg", "paracetamol 500mg"},
		{"collapses whitespace", "  Ibuprofen   400mg ", "ibuprofen 400mg"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeComposition(tt.in); got != tt.want {
				t.Errorf("NormalizeComposition(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractActiveIngredient(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"parenthesized dosage", "Paracetamol (500mg)", "paracetamol"},
		{"trailing dosage", "Ibuprofen 400mg", "ibuprofen"},
		{"two words", "Amoxicillin Trihydrate 250 mg", "amoxicillin trihydrate"},
		{"no dosage", "Cetirizine", "cetirizine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractActiveIngredient(tt.in); got != tt.want {
				t.Errorf("ExtractActiveIngredient(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractDosage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"attached unit", "Paracetamol 500mg", "500mg"},
		{"spaced unit", "Amoxicillin 250 mg", "250mg"},
		{"ml unit", "Syrup 5 ml", "5ml"},
		{"uppercase unit", "Vitamin D 1000 IU", "1000iu"},
		{"none", "Cetirizine", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDosage(tt.in); got != tt.want {
				t.Errorf("ExtractDosage(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
