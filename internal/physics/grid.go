package physics

import "math"

// grid is a uniform spatial hash: each cell heads a singly linked list of
// rows threaded through next. Positions outside the covered area clamp to
// the border cells.
type grid struct {
	cell       float64
	inv        float64
	top        float64
	cols, rows int
	head       []int32
	next       []int32
}

func (g *grid) init(width, top, bottom, cell float64, capacity int) {
	if cell <= 0 {
		cell = 1
	}
	g.cell = cell
	g.inv = 1 / cell
	g.top = top
	g.cols = max(1, int(math.Ceil(width/cell)))
	g.rows = max(1, int(math.Ceil((bottom-top)/cell)))
	n := g.cols * g.rows
	if cap(g.head) >= n {
		g.head = g.head[:n]
	} else {
		g.head = make([]int32, n)
	}
	if len(g.next) != capacity {
		g.next = make([]int32, capacity)
	}
	g.clear()
}

func (g *grid) clear() {
	for i := range g.head {
		g.head[i] = -1
	}
}

func (g *grid) cellOf(x, y float64) (cx, cy int) {
	cx = clampI(int(math.Floor(x*g.inv)), 0, g.cols-1)
	cy = clampI(int(math.Floor((y-g.top)*g.inv)), 0, g.rows-1)
	return cx, cy
}

func (g *grid) insert(row int32, x, y float64) {
	cx, cy := g.cellOf(x, y)
	c := cy*g.cols + cx
	g.next[row] = g.head[c]
	g.head[c] = row
}

// rebuildGrid links every Active row into its cell. Dying and pending rows
// stay out so they neither push nor get pushed.
func (e *Engine) rebuildGrid() {
	g := &e.grid
	if len(g.head) == 0 {
		return
	}
	g.clear()
	for i := 0; i < e.n; i++ {
		if e.state[i] != Active {
			continue
		}
		g.insert(int32(i), e.x[i], e.y[i])
	}
}
