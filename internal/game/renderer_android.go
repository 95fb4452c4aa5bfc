//go:build android

package game

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"golang.org/x/mobile/gl"

	"pointfall/internal/loop"
	"pointfall/internal/physics"
	"pointfall/internal/surface"
	"pointfall/internal/surface/mobilesurface"
)

const coinVertSrcMobile = `
attribute vec2 aPos;
attribute float aSize;
attribute vec4 aColor;
attribute float aRotation;
uniform vec2 uResolution;
uniform float uScale;
varying vec4 vColor;
varying float vRotation;
void main() {
  vec2 ndc = (aPos / uResolution) * 2.0 - 1.0;
  ndc.y = -ndc.y;
  gl_Position = vec4(ndc, 0.0, 1.0);
  gl_PointSize = max(1.0, floor(aSize * uScale + 0.5));
  vColor = aColor;
  vRotation = aRotation;
}`

const coinFragSrcMobile = `
precision mediump float;
varying vec4 vColor;
varying float vRotation;
void main() {
  vec2 uv = gl_PointCoord - vec2(0.5);
  float d = length(uv) * 2.0;
  if (d > 1.0) discard;
  float edge = 1.0 - smoothstep(0.88, 1.0, d);
  vec3 col = vColor.rgb * mix(1.0, 0.72, smoothstep(0.70, 0.82, d));
  float c = cos(vRotation);
  float s = sin(vRotation);
  float rx = c * uv.x - s * uv.y;
  float hi = clamp(1.0 - abs(rx) * 9.0, 0.0, 1.0) * step(d, 0.66);
  col = mix(col, vec3(1.0), hi * 0.35);
  gl_FragColor = vec4(col, vColor.a * edge);
}`

const blitVertSrcMobile = `
attribute vec2 aPos;
attribute vec2 aUV;
varying vec2 vUV;
void main() {
  vUV = aUV;
  gl_Position = vec4(aPos, 0.0, 1.0);
}`

const blitFragSrcMobile = `
precision mediump float;
varying vec2 vUV;
uniform sampler2D uTex;
void main() {
  gl_FragColor = texture2D(uTex, vUV);
}`

var errNoContext = errors.New("mobile renderer: no gl context")

// MobileRenderer draws with GLES2 through x/mobile. The context comes and
// goes with visibility, so GL objects are built in Attach and dropped in
// Detach; the renderer itself lives as long as the scheduler.
type MobileRenderer struct {
	glctx      gl.Context
	surf       mobilesurface.Mobile
	densityCap float64
	buf        []float32
	bytes      []byte

	coin   gl.Program
	aPos   gl.Attrib
	aSize  gl.Attrib
	aColor gl.Attrib
	aRot   gl.Attrib
	uRes   gl.Uniform
	uScale gl.Uniform
	spVBO  gl.Buffer

	blit      gl.Program
	blitPos   gl.Attrib
	blitUV    gl.Attrib
	blitTex   gl.Uniform
	quadVBO   gl.Buffer
	fbo       gl.Framebuffer
	tex       gl.Texture
	bufW      int
	bufH      int
	hasTarget bool
}

func NewMobileRenderer(densityCap float64) *MobileRenderer {
	return &MobileRenderer{densityCap: densityCap}
}

// Init records the surface. GL work waits for Attach.
func (r *MobileRenderer) Init(s surface.Surface) error {
	if m, ok := s.(mobilesurface.Mobile); ok {
		r.surf = m
	}
	return nil
}

// SetSurface follows size events.
func (r *MobileRenderer) SetSurface(m mobilesurface.Mobile) {
	r.surf = m
	if r.glctx != nil {
		if err := r.resizeTarget(); err != nil {
			r.releaseTarget()
		}
	}
}

func (r *MobileRenderer) Attach(glctx gl.Context) error {
	if r.glctx != nil {
		return nil
	}
	coin, err := linkProgram(glctx, coinVertSrcMobile, coinFragSrcMobile)
	if err != nil {
		return fmt.Errorf("coin program: %w", err)
	}
	blit, err := linkProgram(glctx, blitVertSrcMobile, blitFragSrcMobile)
	if err != nil {
		glctx.DeleteProgram(coin)
		return fmt.Errorf("blit program: %w", err)
	}
	r.glctx = glctx
	r.coin = coin
	r.aPos = glctx.GetAttribLocation(coin, "aPos")
	r.aSize = glctx.GetAttribLocation(coin, "aSize")
	r.aColor = glctx.GetAttribLocation(coin, "aColor")
	r.aRot = glctx.GetAttribLocation(coin, "aRotation")
	r.uRes = glctx.GetUniformLocation(coin, "uResolution")
	r.uScale = glctx.GetUniformLocation(coin, "uScale")
	r.spVBO = glctx.CreateBuffer()

	r.blit = blit
	r.blitPos = glctx.GetAttribLocation(blit, "aPos")
	r.blitUV = glctx.GetAttribLocation(blit, "aUV")
	r.blitTex = glctx.GetUniformLocation(blit, "uTex")
	verts := []float32{
		-1, -1, 0, 0,
		1, -1, 1, 0,
		-1, 1, 0, 1,
		1, 1, 1, 1,
	}
	r.quadVBO = glctx.CreateBuffer()
	glctx.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	glctx.BufferData(gl.ARRAY_BUFFER, f32bytes(nil, verts), gl.STATIC_DRAW)

	if r.surf.Ready() {
		return r.resizeTarget()
	}
	return nil
}

func (r *MobileRenderer) resizeTarget() error {
	w, h := surface.BufferSize(r.surf, r.densityCap)
	if r.hasTarget && w == r.bufW && h == r.bufH {
		return nil
	}
	r.releaseTarget()
	glctx := r.glctx

	r.tex = glctx.CreateTexture()
	glctx.ActiveTexture(gl.TEXTURE0)
	glctx.BindTexture(gl.TEXTURE_2D, r.tex)
	glctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	glctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	glctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	glctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	glctx.TexImage2D(gl.TEXTURE_2D, 0, int(gl.RGBA), w, h, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	r.fbo = glctx.CreateFramebuffer()
	glctx.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)
	glctx.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, r.tex, 0)
	status := glctx.CheckFramebufferStatus(gl.FRAMEBUFFER)
	glctx.BindFramebuffer(gl.FRAMEBUFFER, gl.Framebuffer{})
	r.hasTarget = true
	if status != gl.FRAMEBUFFER_COMPLETE {
		r.releaseTarget()
		return fmt.Errorf("framebuffer %dx%d incomplete: 0x%x", w, h, uint32(status))
	}
	r.bufW, r.bufH = w, h
	return nil
}

func (r *MobileRenderer) releaseTarget() {
	if !r.hasTarget || r.glctx == nil {
		return
	}
	r.glctx.DeleteFramebuffer(r.fbo)
	r.glctx.DeleteTexture(r.tex)
	r.hasTarget = false
	r.bufW, r.bufH = 0, 0
}

// Detach drops every GL object; the context is going away.
func (r *MobileRenderer) Detach() {
	if r.glctx == nil {
		return
	}
	r.releaseTarget()
	r.glctx.DeleteBuffer(r.spVBO)
	r.glctx.DeleteBuffer(r.quadVBO)
	r.glctx.DeleteProgram(r.coin)
	r.glctx.DeleteProgram(r.blit)
	r.glctx = nil
}

func (r *MobileRenderer) Render(sim loop.Simulation, alpha float64) error {
	src, ok := sim.(SpriteSource)
	if !ok {
		return fmt.Errorf("mobile renderer: %T has no sprites", sim)
	}
	if r.glctx == nil {
		return errNoContext
	}
	if !r.hasTarget {
		if err := r.resizeTarget(); err != nil {
			return err
		}
	}
	glctx := r.glctx
	r.buf = src.AppendSprites(r.buf[:0], alpha)

	glctx.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)
	glctx.Viewport(0, 0, r.bufW, r.bufH)
	glctx.ClearColor(0.07, 0.055, 0.10, 1)
	glctx.Clear(gl.COLOR_BUFFER_BIT)
	r.drawSprites()

	glctx.BindFramebuffer(gl.FRAMEBUFFER, gl.Framebuffer{})
	fw, fh := surface.BufferSize(r.surf, 0)
	glctx.Viewport(0, 0, fw, fh)
	glctx.UseProgram(r.blit)
	glctx.ActiveTexture(gl.TEXTURE0)
	glctx.BindTexture(gl.TEXTURE_2D, r.tex)
	glctx.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	glctx.EnableVertexAttribArray(r.blitPos)
	glctx.EnableVertexAttribArray(r.blitUV)
	glctx.VertexAttribPointer(r.blitPos, 2, gl.FLOAT, false, 16, 0)
	glctx.VertexAttribPointer(r.blitUV, 2, gl.FLOAT, false, 16, 8)
	glctx.Uniform1i(r.blitTex, 0)
	glctx.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	glctx.DisableVertexAttribArray(r.blitPos)
	glctx.DisableVertexAttribArray(r.blitUV)

	if code := glctx.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", uint32(code))
	}
	return nil
}

func (r *MobileRenderer) drawSprites() {
	n := len(r.buf) / physics.SpriteStride
	if n == 0 {
		return
	}
	glctx := r.glctx
	lw, lh := r.surf.LogicalSize()

	glctx.UseProgram(r.coin)
	glctx.BindBuffer(gl.ARRAY_BUFFER, r.spVBO)
	r.bytes = f32bytes(r.bytes[:0], r.buf)
	glctx.BufferData(gl.ARRAY_BUFFER, r.bytes, gl.STREAM_DRAW)
	setSpriteAttribs(glctx, r.aPos, r.aSize, r.aColor, r.aRot)
	glctx.Uniform2f(r.uRes, float32(lw), float32(lh))
	glctx.Uniform1f(r.uScale, float32(surface.Scale(r.surf, r.densityCap)))

	glctx.Enable(gl.BLEND)
	glctx.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	glctx.DrawArrays(gl.POINTS, 0, n)
	glctx.Disable(gl.BLEND)
}

func (r *MobileRenderer) Destroy() {
	r.Detach()
	r.buf = nil
	r.bytes = nil
}

func setSpriteAttribs(glctx gl.Context, pos, size, color, rot gl.Attrib) {
	const stride = physics.SpriteStride * 4
	glctx.EnableVertexAttribArray(pos)
	glctx.EnableVertexAttribArray(size)
	glctx.EnableVertexAttribArray(color)
	glctx.EnableVertexAttribArray(rot)
	glctx.VertexAttribPointer(pos, 2, gl.FLOAT, false, stride, 0)
	glctx.VertexAttribPointer(size, 1, gl.FLOAT, false, stride, 8)
	glctx.VertexAttribPointer(color, 4, gl.FLOAT, false, stride, 12)
	glctx.VertexAttribPointer(rot, 1, gl.FLOAT, false, stride, 28)
}

// f32bytes appends vals to dst as little-endian float32s.
func f32bytes(dst []byte, vals []float32) []byte {
	for _, v := range vals {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

func compileShader(glctx gl.Context, kind gl.Enum, src string) (gl.Shader, error) {
	sh := glctx.CreateShader(kind)
	glctx.ShaderSource(sh, src)
	glctx.CompileShader(sh)
	if glctx.GetShaderi(sh, gl.COMPILE_STATUS) == 0 {
		log := glctx.GetShaderInfoLog(sh)
		glctx.DeleteShader(sh)
		return gl.Shader{}, fmt.Errorf("shader compile failed: %s", log)
	}
	return sh, nil
}

func linkProgram(glctx gl.Context, vertSrc, fragSrc string) (gl.Program, error) {
	vs, err := compileShader(glctx, gl.VERTEX_SHADER, vertSrc)
	if err != nil {
		return gl.Program{}, err
	}
	fs, err := compileShader(glctx, gl.FRAGMENT_SHADER, fragSrc)
	if err != nil {
		glctx.DeleteShader(vs)
		return gl.Program{}, err
	}
	prog := glctx.CreateProgram()
	glctx.AttachShader(prog, vs)
	glctx.AttachShader(prog, fs)
	glctx.LinkProgram(prog)
	glctx.DeleteShader(vs)
	glctx.DeleteShader(fs)
	if glctx.GetProgrami(prog, gl.LINK_STATUS) == 0 {
		log := glctx.GetProgramInfoLog(prog)
		glctx.DeleteProgram(prog)
		return gl.Program{}, fmt.Errorf("program link failed: %s", log)
	}
	return prog, nil
}
