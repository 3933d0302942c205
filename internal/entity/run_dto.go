package entity

import "time"

// StartRunRequest is the body of POST /pipeline-run.
type StartRunRequest struct {
	MainContent      string `json:"main_content"`
	AuxiliaryContext string `json:"auxiliary_context"`
	RelevanceTopic   string `json:"relevance_topic,omitempty"`

	ModelID               string `json:"model_id"`
	MaxChars              int    `json:"max_chars"`
	TemplateOverheadChars int    `json:"template_overhead_chars,omitempty"`
	SafetyMarginChars     int    `json:"safety_margin_chars,omitempty"`

	MainLimit    int    `json:"main_limit,omitempty"`
	AuxLimit     int    `json:"aux_limit,omitempty"`
	Concurrency  int    `json:"concurrency,omitempty"`
	JoinStrategy string `json:"join_strategy,omitempty"`

	// Prompt templates with {{main_chunk}}, {{aux_chunk}} and
	// {{partial_results}} placeholders. Defaults apply when empty.
	ProcessingTemplate     string `json:"processing_template,omitempty"`
	SynthesisTemplate      string `json:"synthesis_template,omitempty"`
	ProcessingSystemPrompt string `json:"processing_system_prompt,omitempty"`
	SynthesisSystemPrompt  string `json:"synthesis_system_prompt,omitempty"`

	CallbackURL string `json:"callback_url"`
}

// StartRunResponse acknowledges an accepted run.
type StartRunResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// RunDTO is the external view of a pipeline run.
type RunDTO struct {
	ID             string         `json:"id"`
	Status         RunStatus      `json:"status"`
	Progress       *ProgressEvent `json:"progress,omitempty"`
	EstimatedCalls int            `json:"estimated_calls,omitempty"`
	Error          *string        `json:"error,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// RunResultDTO carries the final synthesized text.
type RunResultDTO struct {
	ID     string `json:"id"`
	Result string `json:"result"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
