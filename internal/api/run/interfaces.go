package run

import (
	"context"

	"github.com/futig/pipeline-backend/internal/entity"
)

type RunUsecase interface {
	StartRun(ctx context.Context, in *entity.PipelineInput, callbackURL string, requestID string) (*entity.Run, error)
	GetRun(ctx context.Context, runID string) (*entity.Run, error)
	GetResult(ctx context.Context, runID string) (string, error)
	CancelRun(ctx context.Context, runID string) error
}
