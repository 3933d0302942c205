package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/futig/pipeline-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testChunks(texts ...string) []entity.Chunk {
	chunks := make([]entity.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = entity.Chunk{Index: i, Source: entity.SourceMain, Text: text}
	}
	return chunks
}

func TestPrioritize(t *testing.T) {
	t.Parallel()

	t.Run("is identity when no reduction is needed", func(t *testing.T) {
		t.Parallel()
		uc := NewUsecase(callerFunc(func(context.Context, string, []entity.Message, map[string]any) (string, error) {
			t.Error("no scoring call expected")
			return "", nil
		}), zap.NewNop())

		chunks := testChunks("a", "b", "c")
		assert.Equal(t, chunks, uc.prioritize(context.Background(), chunks, "topic", 0, "model"))
		assert.Equal(t, chunks, uc.prioritize(context.Background(), chunks, "topic", 3, "model"))
		assert.Equal(t, chunks, uc.prioritize(context.Background(), chunks, "topic", 5, "model"))
	})

	t.Run("selects highest scored chunks in descending order", func(t *testing.T) {
		t.Parallel()
		uc := NewUsecase(callerFunc(func(_ context.Context, _ string, messages []entity.Message, _ map[string]any) (string, error) {
			assert.Contains(t, userPrompt(messages), "database schemas")
			return `[{"chunk_index":0,"score":2},{"chunk_index":1,"score":9},{"chunk_index":2,"score":7}]`, nil
		}), zap.NewNop())

		got := uc.prioritize(context.Background(), testChunks("a", "b", "c"), "database schemas", 2, "model")
		require.Len(t, got, 2)
		assert.Equal(t, "b", got[0].Text)
		assert.Equal(t, "c", got[1].Text)
	})

	t.Run("keeps original untruncated text after ranking", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("z", previewChars+100)
		var prompt string
		uc := NewUsecase(callerFunc(func(_ context.Context, _ string, messages []entity.Message, _ map[string]any) (string, error) {
			prompt = userPrompt(messages)
			return `[{"chunk_index":0,"score":8},{"chunk_index":1,"score":1}]`, nil
		}), zap.NewNop())

		got := uc.prioritize(context.Background(), testChunks(long, "short"), "topic", 1, "model")
		require.Len(t, got, 1)
		assert.Equal(t, long, got[0].Text, "selected chunk keeps its full text")
		assert.NotContains(t, prompt, long, "scoring prompt only carries the preview")
	})

	t.Run("accepts fenced JSON", func(t *testing.T) {
		t.Parallel()
		uc := NewUsecase(callerFunc(func(context.Context, string, []entity.Message, map[string]any) (string, error) {
			return "```json\n[{\"chunk_index\":1,\"score\":10},{\"chunk_index\":0,\"score\":1}]\n```", nil
		}), zap.NewNop())

		got := uc.prioritize(context.Background(), testChunks("a", "b"), "topic", 1, "model")
		require.Len(t, got, 1)
		assert.Equal(t, "b", got[0].Text)
	})

	t.Run("falls back to original order on call failure", func(t *testing.T) {
		t.Parallel()
		uc := NewUsecase(callerFunc(func(context.Context, string, []entity.Message, map[string]any) (string, error) {
			return "", errors.New("http 500")
		}), zap.NewNop())

		got := uc.prioritize(context.Background(), testChunks("a", "b", "c", "d"), "topic", 2, "model")
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].Text)
		assert.Equal(t, "b", got[1].Text)
	})

	t.Run("falls back on malformed output", func(t *testing.T) {
		t.Parallel()
		for _, raw := range []string{
			"not json",
			`{"chunk_index":0,"score":5}`,
			`[{"chunk_index":0}]`,
			`[{"score":5}]`,
		} {
			uc := NewUsecase(callerFunc(func(context.Context, string, []entity.Message, map[string]any) (string, error) {
				return raw, nil
			}), zap.NewNop())

			got := uc.prioritize(context.Background(), testChunks("a", "b", "c"), "topic", 2, "model")
			require.Len(t, got, 2, "raw %q", raw)
			assert.Equal(t, "a", got[0].Text)
			assert.Equal(t, "b", got[1].Text)
		}
	})

	t.Run("missing entries default to neutral score", func(t *testing.T) {
		t.Parallel()
		uc := NewUsecase(callerFunc(func(context.Context, string, []entity.Message, map[string]any) (string, error) {
			// Only chunk 2 is rated above neutral; 0 and 1 are omitted.
			return `[{"chunk_index":2,"score":9}]`, nil
		}), zap.NewNop())

		got := uc.prioritize(context.Background(), testChunks("a", "b", "c"), "topic", 2, "model")
		require.Len(t, got, 2)
		assert.Equal(t, "c", got[0].Text)
		assert.Equal(t, "a", got[1].Text, "ties keep original order")
	})

	t.Run("spends exactly one call", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		uc := NewUsecase(callerFunc(func(context.Context, string, []entity.Message, map[string]any) (string, error) {
			calls.Add(1)
			return `[{"chunk_index":0,"score":5},{"chunk_index":1,"score":5},{"chunk_index":2,"score":5}]`, nil
		}), zap.NewNop())

		uc.prioritize(context.Background(), testChunks("a", "b", "c"), "topic", 2, "model")
		assert.Equal(t, int32(1), calls.Load())
	})
}
