package term

import "github.com/corvidterm/corvid/grid"

// RenderGrid is a scoped, read-mostly view of a Term's active screen. It is
// acquired with AcquireRenderGrid and must be released with Release — via
// defer, immediately after acquisition, so the release runs on every exit
// path including a panic mid-frame. While a RenderGrid is open, the cursor
// cell has its colors inverted in place so the renderer can draw it without
// any cursor-specific branching, and Release reverses that inversion before
// giving up the lock.
type RenderGrid struct {
	term           *Term
	invertedLine   grid.Line
	invertedCol    grid.Column
	didInvert      bool
	savedCellValue grid.Cell
}

// AcquireRenderGrid locks t and returns a RenderGrid over its currently
// active screen. The caller must call Release exactly once.
func (t *Term) AcquireRenderGrid() *RenderGrid {
	t.Lock()

	rg := &RenderGrid{term: t}
	cur := t.activeCursor()
	if t.mode.Has(ModeShowCursor) && t.activeGrid().Contains(*cur) && int(cur.Col) < t.activeGrid().NumCols() {
		cell := t.activeGrid().Cell(cur.Line, cur.Col)
		rg.savedCellValue = *cell
		rg.invertedLine = cur.Line
		rg.invertedCol = cur.Col
		rg.didInvert = true
		cell.Fg, cell.Bg = cell.Bg, cell.Fg
	}
	return rg
}

// Release undoes the cursor-cell inversion applied at acquisition, clears
// the term's dirty flag, and unlocks the term. Calling it more than once is
// a programming error.
func (rg *RenderGrid) Release() {
	t := rg.term
	if rg.didInvert {
		*t.activeGrid().Cell(rg.invertedLine, rg.invertedCol) = rg.savedCellValue
	}
	t.dirty = false
	t.Unlock()
}

// NumLines returns the active grid's row count.
func (rg *RenderGrid) NumLines() int { return rg.term.activeGrid().NumLines() }

// NumCols returns the active grid's column count.
func (rg *RenderGrid) NumCols() int { return rg.term.activeGrid().NumCols() }

// Cell returns a copy of the cell at (l, c), with the cursor inversion (if
// any) already applied.
func (rg *RenderGrid) Cell(l grid.Line, c grid.Column) grid.Cell {
	return *rg.term.activeGrid().Cell(l, c)
}

// Row returns a copy of line l's cells, in column order.
func (rg *RenderGrid) Row(l grid.Line) []grid.Cell {
	src := rg.term.activeGrid().Row(l)
	out := make([]grid.Cell, len(src))
	copy(out, src)
	return out
}

// Cursor returns the active screen's cursor position.
func (rg *RenderGrid) Cursor() grid.Cursor {
	return *rg.term.activeCursor()
}
