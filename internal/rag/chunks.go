package rag

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/medfinder/medfinder/internal/models"
)

// LoadChunksJSONL reads corpus chunks from a JSONL file, one object per line.
// Malformed lines are skipped; chunks without an ID get one assigned so every
// indexed chunk has a stable identifier.
func LoadChunksJSONL(path string) ([]models.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chunks file: %w", err)
	}
	defer f.Close()

	var chunks []models.Chunk
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var chunk models.Chunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}
		if chunk.ID == "" {
			chunk.ID = uuid.New().String()
		}
		chunks = append(chunks, chunk)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan chunks file: %w", err)
	}
	return chunks, nil
}
