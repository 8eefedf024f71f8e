// Package rag provides the vector index build and retrieval over the medical corpus.
package rag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/medfinder/medfinder/internal/models"
	"github.com/medfinder/medfinder/internal/vector"
)

// ErrCorruptedIndex is returned when the vector index and the metadata map
// disagree on entry count. The two artifacts are always rebuilt and swapped
// together; a mismatch means a partial overwrite happened.
var ErrCorruptedIndex = fmt.Errorf("corrupted index: vector count and metadata count differ")

// MetadataStore maps index positions (0..N-1, insertion order) to chunks.
type MetadataStore struct {
	chunks map[int]models.Chunk
}

// NewMetadataStore returns an empty store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{chunks: make(map[int]models.Chunk)}
}

// Put records the chunk at the given position.
func (s *MetadataStore) Put(position int, chunk models.Chunk) {
	s.chunks[position] = chunk
}

// Get returns the chunk at position, if present.
func (s *MetadataStore) Get(position int) (models.Chunk, bool) {
	c, ok := s.chunks[position]
	return c, ok
}

// Len returns the number of entries.
func (s *MetadataStore) Len() int {
	return len(s.chunks)
}

// Save writes the store as JSON keyed by position.
func (s *MetadataStore) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metadata dir: %w", err)
	}
	keyed := make(map[string]models.Chunk, len(s.chunks))
	for pos, chunk := range s.chunks {
		keyed[strconv.Itoa(pos)] = chunk
	}
	data, err := json.Marshal(keyed)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Load reads a store written by Save.
func (s *MetadataStore) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read metadata: %w", err)
	}
	var keyed map[string]models.Chunk
	if err := json.Unmarshal(data, &keyed); err != nil {
		return fmt.Errorf("parse metadata: %w", err)
	}
	s.chunks = make(map[int]models.Chunk, len(keyed))
	for key, chunk := range keyed {
		pos, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("invalid metadata position %q: %w", key, err)
		}
		s.chunks[pos] = chunk
	}
	return nil
}

// Positions returns all positions in ascending order.
func (s *MetadataStore) Positions() []int {
	out := make([]int, 0, len(s.chunks))
	for pos := range s.chunks {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}

// SaveArtifacts writes the index and metadata as a pair: both are written to
// temp files first and renamed into place only after both writes succeed, so
// a crash can never leave one artifact updated and the other stale.
func SaveArtifacts(idx *vector.FlatIndex, store *MetadataStore, indexPath, metadataPath string) error {
	if idx.Size() != store.Len() {
		return ErrCorruptedIndex
	}
	tmpIndex := indexPath + ".tmp"
	tmpMeta := metadataPath + ".tmp"
	if err := idx.Save(tmpIndex); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	if err := store.Save(tmpMeta); err != nil {
		_ = os.Remove(tmpIndex)
		return fmt.Errorf("save metadata: %w", err)
	}
	if err := os.Rename(tmpIndex, indexPath); err != nil {
		_ = os.Remove(tmpIndex)
		_ = os.Remove(tmpMeta)
		return fmt.Errorf("swap index: %w", err)
	}
	if err := os.Rename(tmpMeta, metadataPath); err != nil {
		_ = os.Remove(tmpMeta)
		return fmt.Errorf("swap metadata: %w", err)
	}
	return nil
}

// LoadArtifacts loads the index/metadata pair and verifies the position
// alignment invariant.
func LoadArtifacts(dimensions int, indexPath, metadataPath string) (*vector.FlatIndex, *MetadataStore, error) {
	idx, err := vector.NewFlatIndex(dimensions)
	if err != nil {
		return nil, nil, err
	}
	if err := idx.Load(indexPath); err != nil {
		return nil, nil, fmt.Errorf("load index: %w", err)
	}
	store := NewMetadataStore()
	if err := store.Load(metadataPath); err != nil {
		return nil, nil, fmt.Errorf("load metadata: %w", err)
	}
	if idx.Size() != store.Len() {
		return nil, nil, ErrCorruptedIndex
	}
	return idx, store, nil
}
