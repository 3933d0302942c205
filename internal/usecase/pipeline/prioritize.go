package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/futig/pipeline-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// previewChars bounds how much of each chunk goes into the scoring prompt.
const previewChars = 500

const scoringSystemPrompt = "You rate text fragments for relevance. " +
	"Respond with a JSON array only, no prose."

// prioritize scores chunks for relevance to topic with a single model call
// and keeps the limit highest-scoring ones, ordered by descending score.
// When limit is zero or not smaller than the chunk count the input is
// returned unchanged and no call is spent.
//
// Ranking is an optimization, not a correctness requirement: any failure of
// the scoring call (transport, timeout, malformed JSON) degrades to a
// neutral score for every chunk, which keeps the original order truncated
// to limit. The pipeline never fails here.
func (uc *Usecase) prioritize(ctx context.Context, chunks []entity.Chunk, topic string, limit int, modelID string) []entity.Chunk {
	if limit <= 0 || limit >= len(chunks) {
		return chunks
	}

	scores, err := uc.scoreChunks(ctx, chunks, topic, modelID)
	if err != nil {
		ctxzap.Warn(ctx, "chunk scoring failed, falling back to neutral scores",
			zap.Error(err),
			zap.Int("chunks", len(chunks)),
			zap.Int("limit", limit),
		)
		return chunks[:limit]
	}

	ranked := make([]entity.Chunk, len(chunks))
	copy(ranked, chunks)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].Index] > scores[ranked[j].Index]
	})

	return ranked[:limit]
}

// scoreChunks issues the single scoring call and maps its response back to
// per-chunk scores. Chunks the model skipped keep the neutral score.
func (uc *Usecase) scoreChunks(ctx context.Context, chunks []entity.Chunk, topic string, modelID string) (map[int]float64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rate each fragment 1-10 for relevance to the topic: %q\n\n", topic)
	for _, c := range chunks {
		fmt.Fprintf(&sb, "Fragment %d:\n%s\n\n", c.Index, preview(c.Text))
	}
	sb.WriteString(`Reply with a JSON array of {"chunk_index": <int>, "score": <1-10>} covering every fragment.`)

	raw, err := uc.llm.CallModel(ctx, modelID, []entity.Message{
		{Role: entity.RoleSystem, Content: scoringSystemPrompt},
		{Role: entity.RoleUser, Content: sb.String()},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("scoring call: %w", err)
	}

	priorities, err := parsePriorities(raw)
	if err != nil {
		return nil, err
	}

	scores := make(map[int]float64, len(chunks))
	for _, c := range chunks {
		scores[c.Index] = entity.NeutralScore
	}
	for _, p := range priorities {
		if _, ok := scores[p.ChunkIndex]; ok {
			scores[p.ChunkIndex] = p.Score
		}
	}
	return scores, nil
}

// parsePriorities decodes the scoring response. Every element must carry
// both keys; anything else counts as malformed output.
func parsePriorities(raw string) ([]entity.ChunkPriority, error) {
	type record struct {
		ChunkIndex *int     `json:"chunk_index"`
		Score      *float64 `json:"score"`
	}

	var records []record
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrMalformedModelOutput, err)
	}

	priorities := make([]entity.ChunkPriority, 0, len(records))
	for i, r := range records {
		if r.ChunkIndex == nil || r.Score == nil {
			return nil, fmt.Errorf("%w: element %d missing chunk_index or score", entity.ErrMalformedModelOutput, i)
		}
		priorities = append(priorities, entity.ChunkPriority{ChunkIndex: *r.ChunkIndex, Score: *r.Score})
	}
	return priorities, nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewChars {
		return text
	}
	return string(runes[:previewChars])
}

// stripCodeFence removes a markdown code fence wrapper, with or without a
// language tag, that models habitually add around JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
