package catalog

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/medfinder/medfinder/internal/models"
)

// priceRe matches the first numeric token in a price string, e.g.
// "Rs. 6.75/tablet" -> "6.75", "₹12" -> "12".
var priceRe = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// ParsePrice extracts the numeric value from a catalog price string.
// Strings without a numeric token return +Inf so they sort last.
func ParsePrice(price string) float64 {
	m := priceRe.FindString(price)
	if m == "" {
		return math.Inf(1)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return math.Inf(1)
	}
	return v
}

// SortByPrice sorts medicines ascending by parsed price, in place.
// Medicines with unparseable prices end up at the tail.
func SortByPrice(medicines []models.MedicineRecord) {
	sort.SliceStable(medicines, func(i, j int) bool {
		return ParsePrice(medicines[i].Price) < ParsePrice(medicines[j].Price)
	})
}

// CalculateSavings returns the percentage saved by choosing alternative over
// original. Never negative; zero when either price is unparseable or free.
func CalculateSavings(original, alternative float64) float64 {
	if math.IsInf(original, 1) || math.IsInf(alternative, 1) || original <= 0 {
		return 0
	}
	s := (original - alternative) / original * 100
	if s < 0 {
		return 0
	}
	return s
}

// PriceRangeOf computes the min/max parsed prices across medicines.
// Unparseable prices are skipped; an all-unparseable group yields zeros.
func PriceRangeOf(medicines []models.MedicineRecord) models.PriceRange {
	var r models.PriceRange
	first := true
	for _, m := range medicines {
		p := ParsePrice(m.Price)
		if math.IsInf(p, 1) {
			continue
		}
		if first {
			r.Min, r.Max = p, p
			first = false
			continue
		}
		if p < r.Min {
			r.Min = p
		}
		if p > r.Max {
			r.Max = p
		}
	}
	return r
}
