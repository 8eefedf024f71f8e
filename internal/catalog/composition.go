package catalog

import (
	"regexp"
	"strings"
)

var (
	// dosageRe matches a dosage token like "500mg", "5 ml", "250 mcg".
	dosageRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(mg|mcg|ml|g|iu)\b`)
	// parenRe strips parenthesized qualifiers, e.g. "Paracetamol (500mg)".
	parenRe = regexp.MustCompile(`\([^)]*\)`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeComposition lowercases a composition string and collapses
// whitespace so substring matching is insensitive to catalog formatting.
func NormalizeComposition(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return spaceRe.ReplaceAllString(s, " ")
}

// ExtractActiveIngredient returns the lowercased ingredient name with dosage
// tokens and parenthesized qualifiers removed:
// "Paracetamol (500mg)" -> "paracetamol".
func ExtractActiveIngredient(composition string) string {
	s := parenRe.ReplaceAllString(composition, "")
	s = dosageRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// ExtractDosage returns the first dosage token in composition, e.g. "500mg",
// or an empty string when none is present.
func ExtractDosage(composition string) string {
	m := dosageRe.FindStringSubmatch(composition)
	if m == nil {
		return ""
	}
	return m[1] + strings.ToLower(m[2])
}
