package catalog

import (
	"math"
	"testing"

	"github.com/medfinder/medfinder/internal/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		price string
		want  float64
	}{
		{"rupee per tablet", "Rs. 6.75/tablet", 6.75},
		{"symbol prefix", "₹12", 12},
		{"bare number", "45.50", 45.50},
		{"integer", "100", 100},
		{"text only", "price on request", math.Inf(1)},
		{"empty", "", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.price)
			if got != tt.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.price, got, tt.want)
			}
		})
	}
}

func TestSortByPrice(t *testing.T) {
	medicines := []models.MedicineRecord{
		{Name: "C", Price: "Rs. 30"},
		{Name: "NoPrice", Price: "unavailable"},
		{Name: "A", Price: "Rs. 5.50"},
		{Name: "B", Price: "Rs. 10/strip"},
	}
	SortByPrice(medicines)
	want := []string{"A", "B", "C", "NoPrice"}
	for i, name := range want {
		if medicines[i].Name != name {
			t.Errorf("position %d = %s, want %s", i, medicines[i].Name, name)
		}
	}
}

func TestCalculateSavings(t *testing.T) {
	tests := []struct {
		name     string
		original float64
		alt      float64
		want     float64
	}{
		{"half price", 100, 50, 50},
		{"more expensive clamps to zero", 50, 100, 0},
		{"equal", 20, 20, 0},
		{"unparseable original", math.Inf(1), 10, 0},
		{"zero original", 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSavings(tt.original, tt.alt)
			if got != tt.want {
				t.Errorf("CalculateSavings(%v, %v) = %v, want %v", tt.original, tt.alt, got, tt.want)
			}
		})
	}
}

func TestPriceRangeOf(t *testing.T) {
	medicines := []models.MedicineRecord{
		{Price: "Rs. 8"},
		{Price: "no price"},
		{Price: "Rs. 3.25"},
		{Price: "Rs. 15"},
	}
	r := PriceRangeOf(medicines)
	if r.Min != 3.25 || r.Max != 15 {
		t.Errorf("range = %+v, want min 3.25 max 15", r)
	}

	empty := PriceRangeOf([]models.MedicineRecord{{Price: "n/a"}})
	if empty.Min != 0 || empty.Max != 0 {
		t.Errorf("all-unparseable range = %+v, want zeros", empty)
	}
}
