package pipeline

import (
	"github.com/futig/pipeline-backend/internal/entity"
)

// Partition slices text into contiguous, non-overlapping chunks of at most
// chunkSize runes, preserving original order. Empty text yields a single
// empty chunk so downstream cross-products still produce at least one work
// unit. Boundaries are rune-safe: slicing bytes would cut multi-byte UTF-8
// sequences in half.
func Partition(text string, chunkSize int, source entity.SourceKind) ([]entity.Chunk, error) {
	if chunkSize < 1 {
		return nil, entity.ErrInvalidChunkSize
	}

	if text == "" {
		return []entity.Chunk{{Index: 0, Source: source, Text: ""}}, nil
	}

	runes := []rune(text)
	chunks := make([]entity.Chunk, 0, (len(runes)+chunkSize-1)/chunkSize)
	for start := 0; start < len(runes); start += chunkSize {
		end := min(start+chunkSize, len(runes))
		chunks = append(chunks, entity.Chunk{
			Index:  len(chunks),
			Source: source,
			Text:   string(runes[start:end]),
		})
	}

	return chunks, nil
}
