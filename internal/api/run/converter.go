package run

import (
	"github.com/futig/pipeline-backend/internal/config"
	"github.com/futig/pipeline-backend/internal/entity"
)

// toPipelineInput converts a start request into a pipeline invocation,
// applying configured defaults for the fields the caller left out.
func toPipelineInput(req *entity.StartRunRequest, cfg config.PipelineConfig) *entity.PipelineInput {
	prompts := newPromptSet(req)

	overhead := req.TemplateOverheadChars
	if overhead == 0 {
		overhead = templateOverhead(prompts)
	}

	margin := req.SafetyMarginChars
	if margin == 0 {
		margin = cfg.SafetyMarginChars
	}

	concurrency := req.Concurrency
	if concurrency == 0 {
		concurrency = cfg.DefaultConcurrency
	}

	joinStrategy := entity.JoinStrategy(req.JoinStrategy)
	if joinStrategy == "" {
		joinStrategy = entity.JoinConcat
	}

	return &entity.PipelineInput{
		MainContent:      req.MainContent,
		AuxiliaryContext: req.AuxiliaryContext,
		RelevanceTopic:   req.RelevanceTopic,
		ModelID:          req.ModelID,
		Budget: entity.CharBudget{
			MaxChars:              req.MaxChars,
			TemplateOverheadChars: overhead,
			SafetyMarginChars:     margin,
		},
		Limits: entity.ChunkLimits{
			MainLimit: req.MainLimit,
			AuxLimit:  req.AuxLimit,
		},
		Concurrency:  concurrency,
		JoinStrategy: joinStrategy,
		Prompts:      prompts,
	}
}

// toRunDTO converts a Run entity to its external representation
func toRunDTO(run *entity.Run) *entity.RunDTO {
	return &entity.RunDTO{
		ID:             run.ID,
		Status:         run.Status,
		Progress:       run.Progress,
		EstimatedCalls: run.EstimatedCalls,
		Error:          run.Error,
		CreatedAt:      run.CreatedAt,
		UpdatedAt:      run.UpdatedAt,
	}
}
