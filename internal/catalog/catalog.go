// Package catalog loads the structured medicine catalog and answers
// formula-to-medicine matching queries over it.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/medfinder/medfinder/internal/models"
)

// Loader produces the catalog's medicine records from some backing source.
type Loader func() ([]models.MedicineRecord, error)

// Catalog is a read-through cache over a medicine catalog source. The first
// read loads the source; Invalidate drops the cache so the next read reloads.
type Catalog struct {
	loader Loader
	logger *zap.Logger

	mu        sync.RWMutex
	medicines []models.MedicineRecord
	loaded    bool
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithCatalogLogger sets a logger for load and reload events.
func WithCatalogLogger(l *zap.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

// New creates a catalog backed by loader.
func New(loader Loader, opts ...Option) *Catalog {
	c := &Catalog{loader: loader}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromFile creates a catalog backed by the file at path. The loader is
// chosen by extension: .db/.sqlite/.sqlite3 use the SQLite loader, anything
// else is parsed as JSON.
func NewFromFile(path string, opts ...Option) *Catalog {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return New(SQLiteLoader(path), opts...)
	default:
		return New(JSONLoader(path), opts...)
	}
}

// JSONLoader reads a catalog stored as a JSON array of medicine records.
func JSONLoader(path string) Loader {
	return func() ([]models.MedicineRecord, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		var medicines []models.MedicineRecord
		if err := json.Unmarshal(data, &medicines); err != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
		return medicines, nil
	}
}

// Medicines returns all records, loading the source on first use. The
// returned slice is shared; callers must not mutate it.
func (c *Catalog) Medicines() ([]models.MedicineRecord, error) {
	c.mu.RLock()
	if c.loaded {
		m := c.medicines
		c.mu.RUnlock()
		return m, nil
	}
	c.mu.RUnlock()
	return c.Reload()
}

// Reload re-reads the backing source and replaces the cached records.
func (c *Catalog) Reload() ([]models.MedicineRecord, error) {
	medicines, err := c.loader()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.medicines = medicines
	c.loaded = true
	c.mu.Unlock()
	if c.logger != nil {
		c.logger.Info("catalog loaded", zap.Int("medicines", len(medicines)))
	}
	return medicines, nil
}

// Invalidate drops the cached records; the next read reloads the source.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.medicines = nil
	c.mu.Unlock()
	if c.logger != nil {
		c.logger.Debug("catalog cache invalidated")
	}
}

// Size returns the number of cached records (zero before first load).
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.medicines)
}

// Names returns all medicine names, loading the catalog if needed.
func (c *Catalog) Names() ([]string, error) {
	medicines, err := c.Medicines()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(medicines))
	for _, m := range medicines {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

// Match returns medicines whose composition or name shares the formula's
// active ingredient, sorted ascending by price. Dosage tokens and
// parenthesized qualifiers are stripped from both sides before the
// case-insensitive substring comparison, so "Paracetamol (500mg)" matches
// records listed as "Paracetamol (650mg)" or "Paracetamol 500 mg".
// At most limit records are returned (limit <= 0 means no cap).
func (c *Catalog) Match(formula string, limit int) ([]models.MedicineRecord, error) {
	medicines, err := c.Medicines()
	if err != nil {
		return nil, err
	}
	needle := ExtractActiveIngredient(formula)
	if needle == "" {
		return nil, nil
	}
	var matched []models.MedicineRecord
	for _, m := range medicines {
		if matchesFormula(needle, m) {
			matched = append(matched, m)
		}
	}
	SortByPrice(matched)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func matchesFormula(needle string, m models.MedicineRecord) bool {
	comp := ExtractActiveIngredient(m.Composition)
	name := ExtractActiveIngredient(m.Name)
	if comp != "" && (strings.Contains(comp, needle) || strings.Contains(needle, comp)) {
		return true
	}
	if name != "" && (strings.Contains(name, needle) || strings.Contains(needle, name)) {
		return true
	}
	return false
}

// SimilarMedicines returns medicines sharing the active ingredient of the
// named medicine, cheapest first, excluding the medicine itself.
func (c *Catalog) SimilarMedicines(name string, limit int) ([]models.MedicineRecord, error) {
	medicines, err := c.Medicines()
	if err != nil {
		return nil, err
	}
	target := NormalizeComposition(name)
	var ref *models.MedicineRecord
	for i := range medicines {
		if NormalizeComposition(medicines[i].Name) == target {
			ref = &medicines[i]
			break
		}
	}
	if ref == nil {
		return nil, fmt.Errorf("medicine not found: %s", name)
	}
	ingredient := NormalizeComposition(ExtractActiveIngredient(ref.Composition))
	if ingredient == "" {
		return nil, nil
	}
	var similar []models.MedicineRecord
	for _, m := range medicines {
		if NormalizeComposition(m.Name) == target {
			continue
		}
		comp := NormalizeComposition(m.Composition)
		if comp != "" && strings.Contains(comp, ingredient) {
			similar = append(similar, m)
		}
	}
	SortByPrice(similar)
	if limit > 0 && len(similar) > limit {
		similar = similar[:limit]
	}
	return similar, nil
}
