package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/medfinder/medfinder/internal/catalog"
	"github.com/medfinder/medfinder/internal/models"
)

// CandidateMatches pairs a formula candidate with its catalog matches.
type CandidateMatches struct {
	Candidate models.FormulaCandidate
	Medicines []models.MedicineRecord
}

// Formatter aggregates per-formula matches into the response envelope.
type Formatter struct {
	logger *zap.Logger
}

// NewFormatter returns a formatter.
func NewFormatter(logger *zap.Logger) *Formatter {
	return &Formatter{logger: logger}
}

// Format builds price-range and savings statistics per formula and the
// cross-formula summary. Formulas with zero catalog matches are dropped from
// the output but logged, so catalog coverage gaps stay observable.
func (f *Formatter) Format(matches []CandidateMatches, originalQuery string) ([]models.MatchGroup, models.Summary) {
	groups := make([]models.MatchGroup, 0, len(matches))
	var maxSavings float64
	dropped := 0

	for _, cm := range matches {
		if len(cm.Medicines) == 0 {
			dropped++
			if f.logger != nil && cm.Candidate.Formula != "" {
				f.logger.Info("no catalog matches for formula",
					zap.String("formula", cm.Candidate.Formula),
					zap.String("source", cm.Candidate.Source))
			}
			continue
		}
		pr := catalog.PriceRangeOf(cm.Medicines)
		savings := groupSavings(pr)
		if savings > maxSavings {
			maxSavings = savings
		}
		groups = append(groups, models.MatchGroup{
			Formula:           cm.Candidate.Formula,
			Medicines:         cm.Medicines,
			Count:             len(cm.Medicines),
			PriceRange:        pr,
			SavingsPercentage: savings,
			Dosage:            cm.Candidate.Dosage,
			Reason:            cm.Candidate.Reason,
			Warnings:          cm.Candidate.Warnings,
			RequiresDoctor:    cm.Candidate.RequiresDoctor,
		})
	}

	if f.logger != nil && dropped > 0 {
		f.logger.Debug("formulas dropped with zero matches", zap.Int("count", dropped))
	}

	summary := models.Summary{
		TotalFormulas:       len(groups),
		MaxSavingsPotential: fmt.Sprintf("%.1f%%", maxSavings),
		OriginalQuery:       originalQuery,
	}
	return groups, summary
}

// groupSavings is the relative spread of a group's price range: the best
// possible win from picking the cheapest option over the priciest.
func groupSavings(pr models.PriceRange) float64 {
	if pr.Max <= 0 {
		return 0
	}
	return (pr.Max - pr.Min) / pr.Max * 100
}
