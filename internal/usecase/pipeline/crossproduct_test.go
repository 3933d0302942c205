package pipeline

import (
	"testing"

	"github.com/futig/pipeline-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossProduct(t *testing.T) {
	t.Parallel()

	t.Run("emits main-major order", func(t *testing.T) {
		t.Parallel()
		mains := []entity.Chunk{
			{Index: 0, Source: entity.SourceMain, Text: "m0"},
			{Index: 1, Source: entity.SourceMain, Text: "m1"},
			{Index: 2, Source: entity.SourceMain, Text: "m2"},
		}
		auxes := []entity.Chunk{
			{Index: 0, Source: entity.SourceAuxiliary, Text: "a0"},
			{Index: 1, Source: entity.SourceAuxiliary, Text: "a1"},
		}

		units := CrossProduct(mains, auxes)
		require.Len(t, units, 6)
		want := []entity.WorkUnit{
			{MainChunk: "m0", AuxChunk: "a0"},
			{MainChunk: "m0", AuxChunk: "a1"},
			{MainChunk: "m1", AuxChunk: "a0"},
			{MainChunk: "m1", AuxChunk: "a1"},
			{MainChunk: "m2", AuxChunk: "a0"},
			{MainChunk: "m2", AuxChunk: "a1"},
		}
		assert.Equal(t, want, units)
	})

	t.Run("count is always the product", func(t *testing.T) {
		t.Parallel()
		for _, tc := range []struct{ mains, auxes int }{
			{1, 1}, {4, 1}, {1, 5}, {3, 3},
		} {
			mains := make([]entity.Chunk, tc.mains)
			auxes := make([]entity.Chunk, tc.auxes)
			assert.Len(t, CrossProduct(mains, auxes), tc.mains*tc.auxes)
		}
	})
}
