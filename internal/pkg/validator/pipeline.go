package validator

import (
	"fmt"

	"github.com/futig/pipeline-backend/internal/config"
	"github.com/futig/pipeline-backend/internal/entity"
)

// Validator checks incoming pipeline requests against configured limits.
type Validator struct {
	cfg config.PipelineConfig
}

func NewValidator(cfg config.PipelineConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateStartRun validates StartRunRequest
func (v *Validator) ValidateStartRun(req *entity.StartRunRequest) error {
	if req.MainContent == "" && req.AuxiliaryContext == "" {
		return fmt.Errorf("%w: main_content or auxiliary_context", entity.ErrMissingField)
	}

	if req.ModelID == "" {
		return fmt.Errorf("%w: model_id", entity.ErrMissingField)
	}

	if req.CallbackURL == "" {
		return fmt.Errorf("%w: callback_url", entity.ErrMissingField)
	}

	if req.MaxChars < 1 {
		return fmt.Errorf("%w: max_chars must be positive, got %d", entity.ErrInvalidParameter, req.MaxChars)
	}

	if req.TemplateOverheadChars < 0 || req.SafetyMarginChars < 0 {
		return fmt.Errorf("%w: overhead and safety margin must not be negative", entity.ErrInvalidParameter)
	}

	if req.MainLimit < 0 || req.AuxLimit < 0 {
		return fmt.Errorf("%w: chunk limits must not be negative", entity.ErrInvalidParameter)
	}

	if req.Concurrency < 0 || req.Concurrency > v.cfg.MaxConcurrency {
		return fmt.Errorf("%w: concurrency must be between 0 and %d, got %d",
			entity.ErrInvalidParameter, v.cfg.MaxConcurrency, req.Concurrency)
	}

	if total := len(req.MainContent) + len(req.AuxiliaryContext); total > v.cfg.MaxInputChars {
		return fmt.Errorf("%w: combined input is %d chars (max %d)",
			entity.ErrInvalidParameter, total, v.cfg.MaxInputChars)
	}

	switch entity.JoinStrategy(req.JoinStrategy) {
	case "", entity.JoinConcat, entity.JoinJSONArrayMerge:
	default:
		return fmt.Errorf("%w: unknown join_strategy %q", entity.ErrInvalidParameter, req.JoinStrategy)
	}

	return nil
}
