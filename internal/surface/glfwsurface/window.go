//go:build !android

// Package glfwsurface provides the desktop window surface.
package glfwsurface

import "github.com/go-gl/glfw/v3.3/glfw"

// Window reads sizes from a glfw window. Logical units are window
// coordinates; the density is framebuffer pixels per window unit.
type Window struct {
	W *glfw.Window
}

func (w Window) LogicalSize() (float64, float64) {
	ww, wh := w.W.GetSize()
	return float64(ww), float64(wh)
}

func (w Window) PixelDensity() float64 {
	ww, _ := w.W.GetSize()
	fw, _ := w.W.GetFramebufferSize()
	if ww <= 0 {
		return 1
	}
	return float64(fw) / float64(ww)
}

// Cursor returns the pointer in logical units.
func (w Window) Cursor() (float64, float64) {
	return w.W.GetCursorPos()
}

// Now is the glfw timer in seconds.
func (w Window) Now() float64 { return glfw.GetTime() }
