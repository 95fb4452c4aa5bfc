//go:build !android

package game

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"pointfall/internal/physics"
)

// drawSprites renders point sprites into the bound framebuffer.
// buf format: [x, y, size, r, g, b, a, rotation] * N, already back to front.
func (r *SpriteRenderer) drawSprites(buf []float32, logicalW, logicalH, scale float64) {
	count := len(buf) / physics.SpriteStride
	if count == 0 {
		return
	}
	if count > r.capacity {
		count = r.capacity
	}

	gl.UseProgram(r.prog)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)

	gl.Uniform2f(r.uRes, float32(logicalW), float32(logicalH))
	gl.Uniform1f(r.uScal, float32(scale))

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.BufferData(gl.ARRAY_BUFFER, count*physics.SpriteStride*4, gl.Ptr(buf), gl.STREAM_DRAW)
	gl.DrawArrays(gl.POINTS, 0, int32(count))

	gl.Disable(gl.BLEND)
	gl.BindVertexArray(0)
}
