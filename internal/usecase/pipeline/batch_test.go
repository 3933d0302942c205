package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/pipeline-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatch(t *testing.T) {
	t.Parallel()

	t.Run("dispatches in waves and reports progress", func(t *testing.T) {
		t.Parallel()
		units := []int{0, 1, 2, 3, 4, 5, 6}

		var calls atomic.Int32
		var progress [][2]int
		results, err := runBatch(context.Background(), units,
			func(_ context.Context, u int) (string, error) {
				calls.Add(1)
				return fmt.Sprintf("r%d", u), nil
			},
			2,
			func(completed, total int) {
				progress = append(progress, [2]int{completed, total})
			},
		)
		require.NoError(t, err)

		assert.Equal(t, int32(7), calls.Load())
		assert.Equal(t, []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6"}, results)

		// 4 waves: 2, 2, 2, 1.
		require.Len(t, progress, 4)
		assert.Equal(t, [][2]int{{2, 7}, {4, 7}, {6, 7}, {7, 7}}, progress)
	})

	t.Run("result order ignores completion timing", func(t *testing.T) {
		t.Parallel()
		units := []int{0, 1, 2, 3}
		results, err := runBatch(context.Background(), units,
			func(_ context.Context, u int) (string, error) {
				// Earlier units in a wave finish later.
				if u%2 == 0 {
					time.Sleep(20 * time.Millisecond)
				}
				return fmt.Sprintf("r%d", u), nil
			},
			2, nil,
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"r0", "r1", "r2", "r3"}, results)
	})

	t.Run("cancellation stops after the in-flight wave", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancelCause(context.Background())
		units := []int{0, 1, 2, 3, 4, 5, 6}

		var calls atomic.Int32
		_, err := runBatch(ctx, units,
			func(_ context.Context, u int) (string, error) {
				if calls.Add(1) == 4 {
					// User cancels while wave 2 is settling.
					cancel(entity.ErrRunCancelled)
				}
				return "", nil
			},
			2, nil,
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrRunCancelled)
		assert.LessOrEqual(t, calls.Load(), int32(4))
	})

	t.Run("single unit failure fails the batch", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("upstream exploded")
		var calls atomic.Int32
		_, err := runBatch(context.Background(), []int{0, 1, 2, 3, 4, 5},
			func(_ context.Context, u int) (string, error) {
				calls.Add(1)
				if u == 3 {
					return "", wantErr
				}
				return "ok", nil
			},
			2, nil,
		)
		assert.ErrorIs(t, err, wantErr)
		// Waves after the failing one are never dispatched.
		assert.Equal(t, int32(4), calls.Load())
	})

	t.Run("clamps non-positive concurrency to one", func(t *testing.T) {
		t.Parallel()
		var progress [][2]int
		results, err := runBatch(context.Background(), []int{0, 1},
			func(_ context.Context, u int) (string, error) {
				return fmt.Sprintf("r%d", u), nil
			},
			0,
			func(completed, total int) {
				progress = append(progress, [2]int{completed, total})
			},
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"r0", "r1"}, results)
		assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, progress)
	})

	t.Run("empty unit list completes without calls", func(t *testing.T) {
		t.Parallel()
		results, err := runBatch(context.Background(), nil,
			func(_ context.Context, u int) (string, error) {
				t.Error("execute must not be called")
				return "", nil
			},
			2, nil,
		)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
