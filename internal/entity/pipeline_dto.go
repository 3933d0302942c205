package entity

// ProcessingPromptFunc renders the user prompt for one work unit.
type ProcessingPromptFunc func(mainChunk, auxChunk string) string

// SynthesisPromptFunc renders the user prompt that reduces joined partial
// results into the final output.
type SynthesisPromptFunc func(partialResults string) string

// PromptSet carries the caller-supplied prompt templates and system prompts
// for both stages. The pipeline never words prompts itself.
type PromptSet struct {
	ProcessingSystemPrompt string
	SynthesisSystemPrompt  string
	ProcessingPrompt       ProcessingPromptFunc
	SynthesisPrompt        SynthesisPromptFunc
}

// PipelineInput is everything one pipeline invocation needs from the caller.
type PipelineInput struct {
	MainContent      string
	AuxiliaryContext string
	RelevanceTopic   string

	ModelID string
	Budget  CharBudget
	Limits  ChunkLimits

	Concurrency  int
	JoinStrategy JoinStrategy
	Prompts      PromptSet

	// OnProgress receives batch progress for both stages. Optional.
	OnProgress func(ProgressEvent)

	// OnStatus receives pipeline phase transitions. Optional.
	OnStatus func(RunStatus)
}

// PipelineOutput is the final synthesized result plus call accounting.
type PipelineOutput struct {
	Result          string
	MainChunks      int
	AuxChunks       int
	ProcessingCalls int
	SynthesisCalls  int
}
