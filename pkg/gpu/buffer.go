package gpu

import (
	"github.com/go-gl/gl/v4.3-core/gl"
)

// StorageBuffer is a shader storage buffer holding float32 data
type StorageBuffer struct {
	id   uint32
	size int // bytes
}

// NewStorageBuffer generates a buffer handle
func NewStorageBuffer() *StorageBuffer {
	b := &StorageBuffer{}
	gl.GenBuffers(1, &b.id)
	return b
}

// Upload replaces the buffer contents. Empty data still allocates one vec4
// so the binding stays valid.
func (b *StorageBuffer) Upload(data []float32) {
	if len(data) == 0 {
		data = make([]float32, 4)
	}

	b.size = len(data) * 4
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.id)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, b.size, gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
}

// BindBase binds the buffer to an indexed storage slot
func (b *StorageBuffer) BindBase(slot uint32) {
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, slot, b.id)
}

// Size returns the uploaded size in bytes
func (b *StorageBuffer) Size() int {
	return b.size
}

// Delete releases the buffer
func (b *StorageBuffer) Delete() {
	if b.id != 0 {
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
	}
}
