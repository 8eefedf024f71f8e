package extract

import (
	"fmt"
	"strings"

	"github.com/medfinder/medfinder/internal/models"
)

// Chunker splits extracted book text into overlapping word-based chunks
// suitable for embedding.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in words).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Chunk splits text into chunks with overlapping windows. Each chunk carries
// the source name and its index within the source as metadata.
func (c *Chunker) Chunk(source, text string) []models.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	var chunks []models.Chunk
	chunkIndex := 0
	for i := 0; i < len(words); i += step {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, models.Chunk{
			ID:   fmt.Sprintf("%s_%d", source, chunkIndex),
			Text: strings.Join(words[i:end], " "),
			Metadata: map[string]interface{}{
				"source":      source,
				"chunk_index": chunkIndex,
			},
		})
		chunkIndex++
		if end >= len(words) {
			break
		}
	}
	return chunks
}
