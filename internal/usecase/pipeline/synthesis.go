package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/pipeline-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// synthesize reduces partial results into the final output. The common case
// is a single call: blanks are dropped, survivors joined, and when the
// joined text fits the per-call budget one synthesis call returns the
// answer. Oversized joins are re-chunked with the same partitioner and run
// through the batch executor as a Synthesis stage, then combined by the
// configured join strategy.
//
// Re-chunking happens at most once. A budget so small that the second pass
// still overflows is pathological input; recursing further would trade an
// oversized call for an unbounded call tree.
func (uc *Usecase) synthesize(ctx context.Context, partials []string, in *entity.PipelineInput) (string, int, error) {
	survivors := make([]string, 0, len(partials))
	for _, p := range partials {
		if strings.TrimSpace(p) != "" {
			survivors = append(survivors, p)
		}
	}
	if len(survivors) == 0 {
		// Every chunk produced blank output. Terminal, not an error.
		return "", 0, nil
	}

	joined := strings.Join(survivors, partSeparator)
	available := synthesisBudget(in)

	if len([]rune(joined)) <= available {
		result, err := uc.call(ctx, in, in.Prompts.SynthesisSystemPrompt, in.Prompts.SynthesisPrompt(joined))
		if err != nil {
			return "", 0, err
		}
		return result, 1, nil
	}

	chunks, err := Partition(joined, available, entity.SourceMain)
	if err != nil {
		return "", 0, fmt.Errorf("partition joined partials: %w", err)
	}

	ctxzap.Info(ctx, "joined partial results exceed budget, re-chunking synthesis",
		zap.Int("joined_chars", len([]rune(joined))),
		zap.Int("available_chars", available),
		zap.Int("synthesis_chunks", len(chunks)),
	)

	parts, err := runBatch(ctx, chunks,
		func(ctx context.Context, c entity.Chunk) (string, error) {
			return uc.call(ctx, in, in.Prompts.SynthesisSystemPrompt, in.Prompts.SynthesisPrompt(c.Text))
		},
		in.Concurrency,
		uc.progressFunc(in, entity.StageSynthesis),
	)
	if err != nil {
		return "", 0, err
	}

	return uc.joinParts(ctx, parts, in.JoinStrategy), len(chunks), nil
}

// joinParts combines chunked synthesis outputs according to the strategy.
func (uc *Usecase) joinParts(ctx context.Context, parts []string, strategy entity.JoinStrategy) string {
	if strategy == entity.JoinJSONArrayMerge {
		if merged, ok := mergeJSONArrays(parts); ok {
			return merged
		}
		// A partially-invalid merge is less harmful than failing the whole
		// pipeline here, so degrade to plain concatenation.
		ctxzap.Warn(ctx, "json array merge failed, falling back to concatenation",
			zap.Int("parts", len(parts)),
		)
	}
	return strings.Join(parts, partSeparator)
}

// mergeJSONArrays concatenates parts element-wise into one JSON array. Each
// part must itself be a JSON array, optionally wrapped in a markdown code
// fence. Reports false when any part fails to parse.
func mergeJSONArrays(parts []string) (string, bool) {
	merged := make([]json.RawMessage, 0)
	for _, part := range parts {
		var elems []json.RawMessage
		if err := json.Unmarshal([]byte(stripCodeFence(part)), &elems); err != nil {
			return "", false
		}
		merged = append(merged, elems...)
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// synthesisBudget computes the characters available for joined partials in a
// synthesis call. The template overhead is measured from the actual template
// rather than taken from the budget, since the synthesis prompt's fixed text
// differs from the processing one.
func synthesisBudget(in *entity.PipelineInput) int {
	overhead := len([]rune(in.Prompts.SynthesisPrompt("")))
	available := in.Budget.MaxChars - overhead - in.Budget.SafetyMarginChars
	if available < 1 {
		return 1
	}
	return available
}
