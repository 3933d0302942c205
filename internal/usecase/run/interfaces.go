package run

import (
	"context"

	"github.com/futig/pipeline-backend/internal/entity"
)

type PipelineExecutor interface {
	Execute(ctx context.Context, in *entity.PipelineInput) (*entity.PipelineOutput, error)
	EstimateCalls(in *entity.PipelineInput) int
}

type CallbackConnector interface {
	SendProgress(ctx context.Context, callbackURL, requestID string, data *entity.CallbackProgressData)
	SendFinalResult(ctx context.Context, callbackURL, requestID string, data *entity.CallbackResultData)
	SendCancelled(ctx context.Context, callbackURL, requestID, runID string)
	SendError(ctx context.Context, callbackURL, requestID, message string, details map[string]any)
}
