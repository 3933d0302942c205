package pipeline

import (
	"context"

	"github.com/futig/pipeline-backend/internal/entity"
)

// callerFunc adapts a function to the ModelCaller interface for tests.
type callerFunc func(ctx context.Context, modelID string, messages []entity.Message, options map[string]any) (string, error)

func (f callerFunc) CallModel(ctx context.Context, modelID string, messages []entity.Message, options map[string]any) (string, error) {
	return f(ctx, modelID, messages, options)
}

// userPrompt returns the content of the last (user) message of a call.
func userPrompt(messages []entity.Message) string {
	if len(messages) == 0 {
		return ""
	}
	return messages[len(messages)-1].Content
}
