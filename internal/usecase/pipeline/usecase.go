package pipeline

import (
	"context"
	"fmt"

	"github.com/futig/pipeline-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// partSeparator joins partial results before synthesis.
const partSeparator = "\n\n---\n\n"

// Usecase implements the chunked map/reduce generation pipeline: partition
// both inputs, optionally rank and trim chunks, fan the cross-product out as
// independent model calls, then reduce the partial outputs into one result.
type Usecase struct {
	llm    ModelCaller
	logger *zap.Logger
}

// NewUsecase creates a new pipeline use case
func NewUsecase(llm ModelCaller, logger *zap.Logger) *Usecase {
	return &Usecase{
		llm:    llm,
		logger: logger,
	}
}

// Execute runs one full pipeline invocation. All state is local to the call;
// nothing is retained between invocations. Cancellation is honored at batch
// wave boundaries and surfaces the cancellation cause of ctx.
func (uc *Usecase) Execute(ctx context.Context, in *entity.PipelineInput) (*entity.PipelineOutput, error) {
	if in.Prompts.ProcessingPrompt == nil || in.Prompts.SynthesisPrompt == nil {
		return nil, fmt.Errorf("%w: prompt templates", entity.ErrMissingField)
	}

	available := in.Budget.Available()
	chunkSize := max(1, available/2)

	uc.reportStatus(in, entity.RunStatusPartitioning)

	mainChunks, err := Partition(in.MainContent, chunkSize, entity.SourceMain)
	if err != nil {
		return nil, fmt.Errorf("partition main content: %w", err)
	}
	auxChunks, err := Partition(in.AuxiliaryContext, chunkSize, entity.SourceAuxiliary)
	if err != nil {
		return nil, fmt.Errorf("partition auxiliary context: %w", err)
	}

	ctxzap.Info(ctx, "partitioned pipeline inputs",
		zap.Int("available_chars", available),
		zap.Int("chunk_size", chunkSize),
		zap.Int("main_chunks", len(mainChunks)),
		zap.Int("aux_chunks", len(auxChunks)),
	)

	if needsPrioritization(mainChunks, in.Limits.MainLimit) || needsPrioritization(auxChunks, in.Limits.AuxLimit) {
		uc.reportStatus(in, entity.RunStatusPrioritizing)
		mainChunks = uc.prioritize(ctx, mainChunks, in.RelevanceTopic, in.Limits.MainLimit, in.ModelID)
		auxChunks = uc.prioritize(ctx, auxChunks, in.RelevanceTopic, in.Limits.AuxLimit, in.ModelID)
	}

	units := CrossProduct(mainChunks, auxChunks)

	ctxzap.Info(ctx, "generated work units",
		zap.Int("selected_main_chunks", len(mainChunks)),
		zap.Int("selected_aux_chunks", len(auxChunks)),
		zap.Int("work_units", len(units)),
	)

	uc.reportStatus(in, entity.RunStatusProcessing)

	partials, err := runBatch(ctx, units,
		func(ctx context.Context, u entity.WorkUnit) (string, error) {
			return uc.call(ctx, in, in.Prompts.ProcessingSystemPrompt, in.Prompts.ProcessingPrompt(u.MainChunk, u.AuxChunk))
		},
		in.Concurrency,
		uc.progressFunc(in, entity.StageProcessing),
	)
	if err != nil {
		return nil, fmt.Errorf("processing stage: %w", err)
	}

	uc.reportStatus(in, entity.RunStatusSynthesizing)

	result, synthesisCalls, err := uc.synthesize(ctx, partials, in)
	if err != nil {
		return nil, fmt.Errorf("synthesis stage: %w", err)
	}

	return &entity.PipelineOutput{
		Result:          result,
		MainChunks:      len(mainChunks),
		AuxChunks:       len(auxChunks),
		ProcessingCalls: len(units),
		SynthesisCalls:  synthesisCalls,
	}, nil
}

// EstimateCalls returns how many processing calls the given input produces
// after partitioning and limit trimming, without issuing any model calls.
// This is the number shown to callers as "estimated calls".
func (uc *Usecase) EstimateCalls(in *entity.PipelineInput) int {
	chunkSize := max(1, in.Budget.Available()/2)
	mainCount := chunkCount(in.MainContent, chunkSize)
	auxCount := chunkCount(in.AuxiliaryContext, chunkSize)
	if in.Limits.MainLimit > 0 && mainCount > in.Limits.MainLimit {
		mainCount = in.Limits.MainLimit
	}
	if in.Limits.AuxLimit > 0 && auxCount > in.Limits.AuxLimit {
		auxCount = in.Limits.AuxLimit
	}
	return mainCount * auxCount
}

// call issues one model call with a system prompt and a user prompt.
func (uc *Usecase) call(ctx context.Context, in *entity.PipelineInput, systemPrompt, userPrompt string) (string, error) {
	messages := make([]entity.Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, entity.Message{Role: entity.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, entity.Message{Role: entity.RoleUser, Content: userPrompt})

	return uc.llm.CallModel(ctx, in.ModelID, messages, nil)
}

func (uc *Usecase) progressFunc(in *entity.PipelineInput, stage entity.Stage) func(completed, total int) {
	if in.OnProgress == nil {
		return nil
	}
	return func(completed, total int) {
		in.OnProgress(entity.ProgressEvent{
			Stage:     stage,
			Completed: completed,
			Total:     total,
		})
	}
}

func (uc *Usecase) reportStatus(in *entity.PipelineInput, status entity.RunStatus) {
	if in.OnStatus != nil {
		in.OnStatus(status)
	}
}

func needsPrioritization(chunks []entity.Chunk, limit int) bool {
	return limit > 0 && len(chunks) > limit
}

func chunkCount(text string, chunkSize int) int {
	n := len([]rune(text))
	if n == 0 {
		return 1
	}
	return (n + chunkSize - 1) / chunkSize
}
