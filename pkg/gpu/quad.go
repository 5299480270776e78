package gpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// QuadVertices covers clip space as a triangle strip
var QuadVertices = [8]float32{
	-1, -1,
	-1, 1,
	1, -1,
	1, 1,
}

// Quad is a full-screen quad drawn with the blit program
type Quad struct {
	vao, vbo uint32
}

// NewQuad uploads the quad and wires its "pos" attribute in program
func NewQuad(program *Shader) (*Quad, error) {
	attrib := gl.GetAttribLocation(program.Program(), gl.Str("pos\x00"))
	if attrib < 0 {
		return nil, fmt.Errorf("quad program has no pos attribute")
	}

	q := &Quad{}
	gl.GenVertexArrays(1, &q.vao)
	gl.BindVertexArray(q.vao)

	gl.GenBuffers(1, &q.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(QuadVertices)*4, gl.Ptr(&QuadVertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(uint32(attrib), 2, gl.FLOAT, false, 0, 0)
	gl.EnableVertexAttribArray(uint32(attrib))

	gl.BindVertexArray(0)
	return q, nil
}

// Draw renders the quad with whatever program is bound
func (q *Quad) Draw() {
	gl.BindVertexArray(q.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, int32(len(QuadVertices)/2))
	gl.BindVertexArray(0)
}

// Delete releases the vertex array and buffer
func (q *Quad) Delete() {
	if q.vbo != 0 {
		gl.DeleteBuffers(1, &q.vbo)
		q.vbo = 0
	}
	if q.vao != 0 {
		gl.DeleteVertexArrays(1, &q.vao)
		q.vao = 0
	}
}
