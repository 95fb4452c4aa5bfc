// Package termsurface maps terminal cells to logical units.
package termsurface

import "github.com/gdamore/tcell/v2"

// Terminal maps a tcell screen to logical units. Each cell spans CellW by
// CellH units; terminals are always density 1.
type Terminal struct {
	Screen tcell.Screen
	CellW  float64
	CellH  float64
}

// NewTerminal uses 8x16 units per cell, roughly the aspect of a glyph.
func NewTerminal(s tcell.Screen) Terminal {
	return Terminal{Screen: s, CellW: 8, CellH: 16}
}

func (t Terminal) LogicalSize() (float64, float64) {
	cols, rows := t.Screen.Size()
	return float64(cols) * t.CellW, float64(rows) * t.CellH
}

func (t Terminal) PixelDensity() float64 { return 1 }

// Cell converts a logical position to a cell coordinate.
func (t Terminal) Cell(x, y float64) (int, int) {
	return int(x / t.CellW), int(y / t.CellH)
}

// Logical returns the centre of cell (cx, cy) in logical units.
func (t Terminal) Logical(cx, cy int) (float64, float64) {
	return (float64(cx) + 0.5) * t.CellW, (float64(cy) + 0.5) * t.CellH
}
