package run

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/futig/pipeline-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// executorMock is a test double for PipelineExecutor with function fields.
type executorMock struct {
	ExecuteFn  func(ctx context.Context, in *entity.PipelineInput) (*entity.PipelineOutput, error)
	EstimateFn func(in *entity.PipelineInput) int
}

func (m *executorMock) Execute(ctx context.Context, in *entity.PipelineInput) (*entity.PipelineOutput, error) {
	return m.ExecuteFn(ctx, in)
}

func (m *executorMock) EstimateCalls(in *entity.PipelineInput) int {
	if m.EstimateFn == nil {
		return 1
	}
	return m.EstimateFn(in)
}

// callbackMock records callback deliveries. Unset fields are no-ops.
type callbackMock struct {
	results   chan *entity.CallbackResultData
	cancelled chan string
	errs      chan string
}

func newCallbackMock() *callbackMock {
	return &callbackMock{
		results:   make(chan *entity.CallbackResultData, 1),
		cancelled: make(chan string, 1),
		errs:      make(chan string, 1),
	}
}

func (m *callbackMock) SendProgress(context.Context, string, string, *entity.CallbackProgressData) {
}

func (m *callbackMock) SendFinalResult(_ context.Context, _, _ string, data *entity.CallbackResultData) {
	m.results <- data
}

func (m *callbackMock) SendCancelled(_ context.Context, _, _, runID string) {
	m.cancelled <- runID
}

func (m *callbackMock) SendError(_ context.Context, _, _, message string, _ map[string]any) {
	m.errs <- message
}

func newTestUsecase(executor *executorMock, callback *callbackMock) *RunUsecase {
	return NewUsecase(executor, callback, time.Minute, time.Minute, zap.NewNop())
}

func TestRunUsecase(t *testing.T) {
	t.Parallel()

	t.Run("completes a run and delivers the result", func(t *testing.T) {
		t.Parallel()
		executor := &executorMock{
			ExecuteFn: func(_ context.Context, _ *entity.PipelineInput) (*entity.PipelineOutput, error) {
				return &entity.PipelineOutput{Result: "synthesized", ProcessingCalls: 4, SynthesisCalls: 1}, nil
			},
			EstimateFn: func(*entity.PipelineInput) int { return 4 },
		}
		callback := newCallbackMock()
		uc := newTestUsecase(executor, callback)

		started, err := uc.StartRun(context.Background(), &entity.PipelineInput{}, "http://cb", "req-1")
		require.NoError(t, err)
		assert.Equal(t, entity.RunStatusPending, started.Status)
		assert.Equal(t, 4, started.EstimatedCalls)

		select {
		case data := <-callback.results:
			assert.Equal(t, started.ID, data.RunID)
			assert.Equal(t, "synthesized", data.Result)
		case <-time.After(2 * time.Second):
			t.Fatal("final result callback not delivered")
		}

		got, err := uc.GetRun(context.Background(), started.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.RunStatusCompleted, got.Status)

		result, err := uc.GetResult(context.Background(), started.ID)
		require.NoError(t, err)
		assert.Equal(t, "synthesized", result)
	})

	t.Run("reports failure and keeps the error", func(t *testing.T) {
		t.Parallel()
		executor := &executorMock{
			ExecuteFn: func(context.Context, *entity.PipelineInput) (*entity.PipelineOutput, error) {
				return nil, errors.New("upstream exploded")
			},
		}
		callback := newCallbackMock()
		uc := newTestUsecase(executor, callback)

		started, err := uc.StartRun(context.Background(), &entity.PipelineInput{}, "http://cb", "req-1")
		require.NoError(t, err)

		select {
		case <-callback.errs:
		case <-time.After(2 * time.Second):
			t.Fatal("error callback not delivered")
		}

		got, err := uc.GetRun(context.Background(), started.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.RunStatusFailed, got.Status)
		require.NotNil(t, got.Error)
		assert.Contains(t, *got.Error, "upstream exploded")

		_, err = uc.GetResult(context.Background(), started.ID)
		assert.ErrorIs(t, err, entity.ErrRunNotFinished)
	})

	t.Run("cancel propagates the cancellation cause", func(t *testing.T) {
		t.Parallel()
		running := make(chan struct{})
		executor := &executorMock{
			ExecuteFn: func(ctx context.Context, _ *entity.PipelineInput) (*entity.PipelineOutput, error) {
				close(running)
				<-ctx.Done()
				return nil, context.Cause(ctx)
			},
		}
		callback := newCallbackMock()
		uc := newTestUsecase(executor, callback)

		started, err := uc.StartRun(context.Background(), &entity.PipelineInput{}, "http://cb", "req-1")
		require.NoError(t, err)
		<-running

		require.NoError(t, uc.CancelRun(context.Background(), started.ID))

		select {
		case runID := <-callback.cancelled:
			assert.Equal(t, started.ID, runID)
		case <-time.After(2 * time.Second):
			t.Fatal("cancelled callback not delivered")
		}

		got, err := uc.GetRun(context.Background(), started.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.RunStatusCancelled, got.Status)

		assert.ErrorIs(t, uc.CancelRun(context.Background(), started.ID), entity.ErrRunNotActive)
	})

	t.Run("unknown run id", func(t *testing.T) {
		t.Parallel()
		uc := newTestUsecase(&executorMock{}, newCallbackMock())

		_, err := uc.GetRun(context.Background(), "missing")
		assert.ErrorIs(t, err, entity.ErrRunNotFound)
		_, err = uc.GetResult(context.Background(), "missing")
		assert.ErrorIs(t, err, entity.ErrRunNotFound)
		assert.ErrorIs(t, uc.CancelRun(context.Background(), "missing"), entity.ErrRunNotFound)
	})
}
