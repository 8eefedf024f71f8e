package suggest

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
)

// NameIndex is a lexical index over catalog medicine names, used as the
// lowest-priority suggestion source. Fuzzy match queries give typo tolerance
// beyond the strict edit-distance matcher.
type NameIndex struct {
	index bleve.Index
}

type nameDoc struct {
	Name string `json:"name"`
}

// NewNameIndex creates or opens a name index at path. An existing index is
// reused; remove the directory to force a rebuild after mapping changes.
func NewNameIndex(path string) (*NameIndex, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	nameFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize, no stemming, so brand names
	// are not mangled before matching.
	nameFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open name index: %w", openErr)
		}
		return &NameIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create name index: %w", err)
	}
	return &NameIndex{index: index}, nil
}

// NewMemoryNameIndex creates an in-memory name index, used by tests and by
// deployments that rebuild the index at startup.
func NewMemoryNameIndex() (*NameIndex, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create memory name index: %w", err)
	}
	return &NameIndex{index: index}, nil
}

// IndexNames indexes all names in one batch, keyed by the name itself.
func (n *NameIndex) IndexNames(names []string) error {
	batch := n.index.NewBatch()
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := batch.Index(name, nameDoc{Name: name}); err != nil {
			return fmt.Errorf("index name %q: %w", name, err)
		}
	}
	return n.index.Batch(batch)
}

// Suggest runs a fuzzy match query over names and returns up to limit hits
// in descending score order.
func (n *NameIndex) Suggest(query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	q := bleve.NewFuzzyQuery(query)
	q.SetField("name")
	q.SetFuzziness(2)
	req := bleve.NewSearchRequest(q)
	req.Size = limit

	res, err := n.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search name index: %w", err)
	}
	names := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		names = append(names, hit.ID)
	}
	return names, nil
}

// Close releases the underlying index.
func (n *NameIndex) Close() error {
	return n.index.Close()
}
