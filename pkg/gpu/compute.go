package gpu

import (
	"github.com/go-gl/gl/v4.3-core/gl"
)

// DispatchSize returns the workgroup counts that cover a width x height
// image with square workgroups, rounding up at the edges
func DispatchSize(width, height, workgroupSize int) (x, y uint32) {
	if workgroupSize <= 0 {
		workgroupSize = 1
	}
	x = uint32((width + workgroupSize - 1) / workgroupSize)
	y = uint32((height + workgroupSize - 1) / workgroupSize)
	return x, y
}

// Dispatch runs the bound compute program over an x by y grid and waits for
// its image writes to become visible to later texture reads
func Dispatch(x, y uint32) {
	gl.DispatchCompute(x, y, 1)
	gl.MemoryBarrier(gl.SHADER_IMAGE_ACCESS_BARRIER_BIT | gl.TEXTURE_FETCH_BARRIER_BIT)
}
