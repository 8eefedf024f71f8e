// Package cli provides CLI utilities for MedFinder.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/medfinder/medfinder/internal/models"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// WriteSearchResults writes a search response to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	if response.Analysis != "" {
		fmt.Fprintf(w, "\n%s\n", response.Analysis)
	}
	fmt.Fprintf(w, "\nFound %d recommendation groups in %dms (rag_used=%v, rag_chunks=%d)\n\n",
		len(response.Recommendations), response.QueryTime, response.RAGUsed, response.RAGChunks)
	if len(response.Recommendations) == 0 {
		fmt.Fprintln(w, "No recommendations found.")
		return
	}
	for i, group := range response.Recommendations {
		writeOneGroup(w, i+1, group)
	}
	if response.Summary.MaxSavingsPotential != "" {
		fmt.Fprintf(w, "Best possible savings: %s\n", response.Summary.MaxSavingsPotential)
	}
}

func writeOneGroup(w io.Writer, rank int, group models.MatchGroup) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "%d. %s | %d medicines | Rs. %.2f–%.2f | save up to %.1f%%\n",
		rank, group.Formula, group.Count, group.PriceRange.Min, group.PriceRange.Max, group.SavingsPercentage)
	if group.Dosage != "" {
		fmt.Fprintf(w, "Dosage: %s\n", group.Dosage)
	}
	if group.Reason != "" {
		fmt.Fprintf(w, "Reason: %s\n", group.Reason)
	}
	if group.Warnings != "" {
		fmt.Fprintf(w, "Warnings: %s\n", group.Warnings)
	}
	for _, m := range group.Medicines {
		price := m.Price
		if price == "" {
			price = "price unknown"
		}
		fmt.Fprintf(w, "  - %s (%s)\n", m.Name, price)
	}
	fmt.Fprintln(w)
}

// PrintSearchResults prints a search response to stdout in text format.
func PrintSearchResults(response *models.SearchResponse) {
	_ = WriteSearchResults(os.Stdout, response, OutputText)
}
