package run

import (
	"strings"
	"unicode/utf8"

	"github.com/futig/pipeline-backend/internal/entity"
)

// Placeholders callers may use in custom prompt templates.
const (
	placeholderMainChunk      = "{{main_chunk}}"
	placeholderAuxChunk       = "{{aux_chunk}}"
	placeholderPartialResults = "{{partial_results}}"
)

const defaultProcessingTemplate = `Process the following content and extract everything relevant.

Main content:
{{main_chunk}}

Additional context:
{{aux_chunk}}`

const defaultSynthesisTemplate = `Combine the following partial results into one coherent final answer. Remove duplicates and contradictions.

Partial results:
{{partial_results}}`

// newPromptSet builds the prompt functions for both stages from the request
// templates, falling back to the default templates when a field is empty.
func newPromptSet(req *entity.StartRunRequest) entity.PromptSet {
	processing := req.ProcessingTemplate
	if processing == "" {
		processing = defaultProcessingTemplate
	}

	synthesis := req.SynthesisTemplate
	if synthesis == "" {
		synthesis = defaultSynthesisTemplate
	}

	return entity.PromptSet{
		ProcessingSystemPrompt: req.ProcessingSystemPrompt,
		SynthesisSystemPrompt:  req.SynthesisSystemPrompt,
		ProcessingPrompt: func(mainChunk, auxChunk string) string {
			return strings.NewReplacer(
				placeholderMainChunk, mainChunk,
				placeholderAuxChunk, auxChunk,
			).Replace(processing)
		},
		SynthesisPrompt: func(partialResults string) string {
			return strings.ReplaceAll(synthesis, placeholderPartialResults, partialResults)
		},
	}
}

// templateOverhead is the number of characters a rendered processing prompt
// consumes before any chunk text is inserted.
func templateOverhead(prompts entity.PromptSet) int {
	return utf8.RuneCountInString(prompts.ProcessingPrompt("", ""))
}
