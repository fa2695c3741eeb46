package term

import (
	"testing"

	"github.com/corvidterm/corvid/grid"
)

func TestAcquireRenderGridInvertsCursorCell(t *testing.T) {
	term := newTestTerm(2, 2)
	term.TerminalAttribute(Attribute{Kind: AttrForegroundSpec, Rgb: grid.Rgb{R: 1, G: 2, B: 3}})
	term.TerminalAttribute(Attribute{Kind: AttrBackgroundSpec, Rgb: grid.Rgb{R: 4, G: 5, B: 6}})
	term.Input('a')
	term.Goto(0, 0)

	rg := term.AcquireRenderGrid()
	cell := rg.Cell(0, 0)
	if cell.Fg != (grid.Rgb{R: 4, G: 5, B: 6}) || cell.Bg != (grid.Rgb{R: 1, G: 2, B: 3}) {
		t.Errorf("cursor cell colors = %+v/%+v, want swapped fg/bg", cell.Fg, cell.Bg)
	}
	rg.Release()

	raw := term.activeGrid().Cell(0, 0)
	if raw.Fg != (grid.Rgb{R: 1, G: 2, B: 3}) || raw.Bg != (grid.Rgb{R: 4, G: 5, B: 6}) {
		t.Errorf("cell after release = %+v/%+v, want original colors restored", raw.Fg, raw.Bg)
	}
}

func TestAcquireRenderGridSkipsInversionWhenCursorHidden(t *testing.T) {
	term := newTestTerm(2, 2)
	term.UnsetMode(ModeShowCursorArg)
	term.Input('a')
	term.Goto(0, 0)

	before := term.activeGrid().Cell(0, 0)
	rg := term.AcquireRenderGrid()
	cell := rg.Cell(0, 0)
	if cell.Fg != before.Fg || cell.Bg != before.Bg {
		t.Error("cell should be untouched when the cursor is hidden")
	}
	rg.Release()
}

func TestRenderGridReleaseClearsDirty(t *testing.T) {
	term := newTestTerm(2, 2)
	term.Input('a')
	if !term.Dirty() {
		t.Fatal("Dirty() should be true after a mutation")
	}
	rg := term.AcquireRenderGrid()
	rg.Release()
	if term.Dirty() {
		t.Error("Dirty() should be false after Release")
	}
}

func TestRenderGridDimensionsMatchActiveGrid(t *testing.T) {
	term := newTestTerm(4, 6)
	rg := term.AcquireRenderGrid()
	defer rg.Release()
	if rg.NumLines() != 4 || rg.NumCols() != 6 {
		t.Errorf("dims = %dx%d, want 4x6", rg.NumLines(), rg.NumCols())
	}
}

func TestRenderGridRowReturnsACopy(t *testing.T) {
	term := newTestTerm(1, 2)
	term.Input('a')
	term.Goto(0, 1)

	rg := term.AcquireRenderGrid()
	row := rg.Row(0)
	row[0].C = 'z'
	rg.Release()

	if got := term.activeGrid().Cell(0, 0).C; got != 'a' {
		t.Errorf("mutating rg.Row's result affected the grid: cell = %q, want 'a'", got)
	}
}
