//go:build !android

package game

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"pointfall/internal/logger"
	"pointfall/internal/loop"
	"pointfall/internal/physics"
	"pointfall/internal/surface"
)

// glOffset converts a byte offset to unsafe.Pointer for OpenGL VBO offset params.
func glOffset(n int) unsafe.Pointer { return unsafe.Pointer(uintptr(n)) }

// SpriteRenderer draws the scene with OpenGL 4.1. Frames are drawn into an
// offscreen target whose density is capped, then blitted to the window.
type SpriteRenderer struct {
	surf       surface.Surface
	log        *logger.Logger
	densityCap float64
	capacity   int

	prog  uint32
	vao   uint32
	vbo   uint32
	uRes  int32
	uScal int32

	fbo, color     uint32
	bufW, bufH     int
	clearR, clearG float32
	clearB         float32

	buf []float32
}

func NewSpriteRenderer(densityCap float64, capacity int, log *logger.Logger) *SpriteRenderer {
	if capacity <= 0 {
		capacity = physics.DefaultMaxParticles
	}
	return &SpriteRenderer{
		log:        log,
		densityCap: densityCap,
		capacity:   capacity,
		clearR:     0.07, clearG: 0.055, clearB: 0.10,
	}
}

func (r *SpriteRenderer) Init(s surface.Surface) error {
	prog, err := linkProgram(coinVertSrc, coinFragSrc)
	if err != nil {
		return fmt.Errorf("coin program: %w", err)
	}
	r.surf = s
	r.prog = prog

	// Each sprite: 8 floats (x, y, size, r, g, b, a, rotation).
	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)

	stride := int32(physics.SpriteStride * 4)
	gl.BufferData(gl.ARRAY_BUFFER, r.capacity*int(stride), nil, gl.STREAM_DRAW)
	// aPos (vec2)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, glOffset(0))
	// aSize (float)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 1, gl.FLOAT, false, stride, glOffset(2*4))
	// aColor (vec4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, stride, glOffset(3*4))
	// aRotation (float)
	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointer(3, 1, gl.FLOAT, false, stride, glOffset(7*4))
	gl.BindVertexArray(0)

	gl.UseProgram(prog)
	r.uRes = gl.GetUniformLocation(prog, gl.Str("uResolution\x00"))
	r.uScal = gl.GetUniformLocation(prog, gl.Str("uScale\x00"))
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	return r.resizeTarget()
}

// targetStale reports whether the offscreen target is missing or no longer
// matches the surface.
func (r *SpriteRenderer) targetStale() bool {
	if r.fbo == 0 {
		return true
	}
	w, h := surface.BufferSize(r.surf, r.densityCap)
	return w != r.bufW || h != r.bufH
}

// resizeTarget (re)allocates the offscreen colour buffer at the capped size.
func (r *SpriteRenderer) resizeTarget() error {
	if !r.targetStale() {
		return nil
	}
	w, h := surface.BufferSize(r.surf, r.densityCap)
	r.releaseTarget()

	gl.GenTextures(1, &r.color)
	gl.BindTexture(gl.TEXTURE_2D, r.color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.GenFramebuffers(1, &r.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, r.color, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		r.releaseTarget()
		return fmt.Errorf("framebuffer %dx%d incomplete: 0x%x", w, h, status)
	}
	r.bufW, r.bufH = w, h
	return nil
}

func (r *SpriteRenderer) releaseTarget() {
	if r.fbo != 0 {
		gl.DeleteFramebuffers(1, &r.fbo)
		r.fbo = 0
	}
	if r.color != 0 {
		gl.DeleteTextures(1, &r.color)
		r.color = 0
	}
	r.bufW, r.bufH = 0, 0
}

func (r *SpriteRenderer) Render(sim loop.Simulation, alpha float64) error {
	src, ok := sim.(SpriteSource)
	if !ok {
		return fmt.Errorf("sprite renderer: %T has no sprites", sim)
	}
	if r.prog == 0 {
		return fmt.Errorf("sprite renderer: not initialised")
	}
	if r.targetStale() {
		if err := r.resizeTarget(); err != nil {
			return err
		}
	}
	r.buf = src.AppendSprites(r.buf[:0], alpha)

	lw, lh := r.surf.LogicalSize()
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)
	gl.Viewport(0, 0, int32(r.bufW), int32(r.bufH))
	gl.ClearColor(r.clearR, r.clearG, r.clearB, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	r.drawSprites(r.buf, lw, lh, surface.Scale(r.surf, r.densityCap))

	fw, fh := surface.BufferSize(r.surf, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, int32(r.bufW), int32(r.bufH), 0, 0, int32(fw), int32(fh), gl.COLOR_BUFFER_BIT, gl.LINEAR)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", code)
	}
	return nil
}

// Resize follows the window; the logical size itself is read from the surface.
func (r *SpriteRenderer) Resize(w, h float64) {
	if r.prog == 0 {
		return
	}
	if err := r.resizeTarget(); err != nil {
		// Render retries on the next frame.
		r.log.Warnf("sprite renderer resize: %v", err)
	}
}

func (r *SpriteRenderer) Destroy() {
	r.releaseTarget()
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		r.vbo = 0
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.prog != 0 {
		gl.DeleteProgram(r.prog)
		r.prog = 0
	}
	r.buf = nil
}
