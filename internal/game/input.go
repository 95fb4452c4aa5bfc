//go:build !android

package game

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"pointfall/internal/surface/glfwsurface"
)

type Input struct {
	prevMouse map[glfw.MouseButton]bool
	prevKeys  map[glfw.Key]bool
}

func NewInput() *Input {
	return &Input{
		prevMouse: make(map[glfw.MouseButton]bool),
		prevKeys:  make(map[glfw.Key]bool),
	}
}

func (in *Input) JustPressed(window *glfw.Window, key glfw.Key) bool {
	down := window.GetKey(key) == glfw.Press
	jp := down && !in.prevKeys[key]
	in.prevKeys[key] = down
	return jp
}

func (in *Input) JustClicked(window *glfw.Window, btn glfw.MouseButton) bool {
	down := window.GetMouseButton(btn) == glfw.Press
	jp := down && !in.prevMouse[btn]
	in.prevMouse[btn] = down
	return jp
}

// Apply feeds the pointer to the scene: the left button held repels, a
// right click or Space explodes at the cursor.
func (in *Input) Apply(w glfwsurface.Window, sc *Scene) {
	x, y := w.Cursor()
	held := w.W.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press
	sc.SetPointer(x, y, held)

	if in.JustClicked(w.W, glfw.MouseButtonRight) || in.JustPressed(w.W, glfw.KeySpace) {
		sc.Explode(x, y)
	}
}
