package run

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/futig/pipeline-backend/internal/entity"
	"github.com/futig/pipeline-backend/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// runState is the mutable registry entry for one pipeline invocation. The
// pipeline itself keeps no state between calls; this entry only exists so
// the API can answer status polls and deliver cooperative cancellation.
type runState struct {
	mu     sync.Mutex
	run    entity.Run
	cancel context.CancelCauseFunc
}

func (s *runState) snapshot() *entity.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := s.run
	if s.run.Progress != nil {
		progress := *s.run.Progress
		run.Progress = &progress
	}
	return &run
}

func (s *runState) update(fn func(*entity.Run)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.run)
	s.run.UpdatedAt = time.Now().UTC()
}

// RunUsecase registers pipeline runs, executes them in the background and
// tracks their progress until TTL eviction.
type RunUsecase struct {
	pipeline PipelineExecutor
	callback CallbackConnector
	runs     *cache.Cache
	logger   *zap.Logger
}

// NewUsecase creates a new run use case. Finished runs stay readable for ttl
// and are evicted afterwards; nothing is ever persisted.
func NewUsecase(pipeline PipelineExecutor, callback CallbackConnector, ttl, cleanupInterval time.Duration, logger *zap.Logger) *RunUsecase {
	return &RunUsecase{
		pipeline: pipeline,
		callback: callback,
		runs:     cache.New(ttl, cleanupInterval),
		logger:   logger,
	}
}

// StartRun registers a run and launches its pipeline in the background.
// Progress, the final result and failures are pushed to callbackURL.
func (uc *RunUsecase) StartRun(ctx context.Context, in *entity.PipelineInput, callbackURL, requestID string) (*entity.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	runCtx, cancel := context.WithCancelCause(context.Background())
	runCtx = logger.AddFields(ctxzap.ToContext(runCtx, uc.logger),
		zap.String("run_id", id),
		zap.String("request_id", requestID),
	)

	state := &runState{
		run: entity.Run{
			ID:             id,
			Status:         entity.RunStatusPending,
			EstimatedCalls: uc.pipeline.EstimateCalls(in),
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		cancel: cancel,
	}
	uc.runs.Set(id, state, cache.DefaultExpiration)

	in.OnStatus = func(status entity.RunStatus) {
		state.update(func(r *entity.Run) {
			r.Status = status
		})
	}
	in.OnProgress = func(ev entity.ProgressEvent) {
		state.update(func(r *entity.Run) {
			r.Progress = &ev
		})
		uc.callback.SendProgress(runCtx, callbackURL, requestID, &entity.CallbackProgressData{
			RunID:     id,
			Stage:     ev.Stage,
			Completed: ev.Completed,
			Total:     ev.Total,
		})
	}

	ctxzap.Info(runCtx, "pipeline run registered",
		zap.Int("estimated_calls", state.run.EstimatedCalls),
	)

	go uc.execute(runCtx, state, in, callbackURL, requestID)

	return state.snapshot(), nil
}

func (uc *RunUsecase) execute(ctx context.Context, state *runState, in *entity.PipelineInput, callbackURL, requestID string) {
	out, err := uc.pipeline.Execute(ctx, in)

	// Terminal callbacks must go out even when the run context was cancelled.
	notifyCtx := context.WithoutCancel(ctx)

	switch {
	case errors.Is(err, entity.ErrRunCancelled):
		ctxzap.Info(ctx, "pipeline run cancelled")
		state.update(func(r *entity.Run) {
			r.Status = entity.RunStatusCancelled
		})
		uc.callback.SendCancelled(notifyCtx, callbackURL, requestID, state.run.ID)

	case err != nil:
		ctxzap.Error(ctx, "pipeline run failed", zap.Error(err))
		message := err.Error()
		state.update(func(r *entity.Run) {
			r.Status = entity.RunStatusFailed
			r.Error = &message
		})
		uc.callback.SendError(notifyCtx, callbackURL, requestID, "pipeline run failed", map[string]any{
			"run_id": state.run.ID,
			"error":  message,
		})

	default:
		ctxzap.Info(ctx, "pipeline run completed",
			zap.Int("processing_calls", out.ProcessingCalls),
			zap.Int("synthesis_calls", out.SynthesisCalls),
			zap.Int("result_length", len(out.Result)),
		)
		state.update(func(r *entity.Run) {
			r.Status = entity.RunStatusCompleted
			r.Result = &out.Result
		})
		uc.callback.SendFinalResult(notifyCtx, callbackURL, requestID, &entity.CallbackResultData{
			RunID:  state.run.ID,
			Result: out.Result,
		})
	}
}

// GetRun returns a snapshot of a registered run.
func (uc *RunUsecase) GetRun(ctx context.Context, id string) (*entity.Run, error) {
	state, err := uc.get(id)
	if err != nil {
		return nil, err
	}
	return state.snapshot(), nil
}

// GetResult returns the final synthesized text of a completed run.
func (uc *RunUsecase) GetResult(ctx context.Context, id string) (string, error) {
	state, err := uc.get(id)
	if err != nil {
		return "", err
	}

	run := state.snapshot()
	if run.Status != entity.RunStatusCompleted {
		return "", entity.ErrRunNotFinished
	}
	return *run.Result, nil
}

// CancelRun requests cooperative cancellation. The run keeps its current
// status until the executor observes the signal at the next wave boundary.
func (uc *RunUsecase) CancelRun(ctx context.Context, id string) error {
	state, err := uc.get(id)
	if err != nil {
		return err
	}

	if state.snapshot().Status.Terminal() {
		return entity.ErrRunNotActive
	}

	ctxzap.Info(ctx, "cancelling pipeline run", zap.String("run_id", id))
	state.cancel(entity.ErrRunCancelled)
	return nil
}

func (uc *RunUsecase) get(id string) (*runState, error) {
	v, ok := uc.runs.Get(id)
	if !ok {
		return nil, entity.ErrRunNotFound
	}
	return v.(*runState), nil
}
