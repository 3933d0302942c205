package pipeline

import (
	"github.com/futig/pipeline-backend/internal/entity"
)

// CrossProduct pairs every main chunk with every auxiliary chunk, main-major.
// The ordering is load-bearing: estimated call counts and progress reporting
// assume dispatch happens in exactly this order.
func CrossProduct(mainChunks, auxChunks []entity.Chunk) []entity.WorkUnit {
	units := make([]entity.WorkUnit, 0, len(mainChunks)*len(auxChunks))
	for _, mc := range mainChunks {
		for _, ac := range auxChunks {
			units = append(units, entity.WorkUnit{
				MainChunk: mc.Text,
				AuxChunk:  ac.Text,
			})
		}
	}
	return units
}
