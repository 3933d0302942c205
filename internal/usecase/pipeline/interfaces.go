package pipeline

import (
	"context"

	"github.com/futig/pipeline-backend/internal/entity"
)

// ModelCaller is the single capability the pipeline needs from the outside
// world: send messages to a model, get text back. Providers with divergent
// APIs are adapted to this interface at the integration layer.
type ModelCaller interface {
	CallModel(ctx context.Context, modelID string, messages []entity.Message, options map[string]any) (string, error)
}
