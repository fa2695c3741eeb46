package term

import (
	"testing"

	"github.com/corvidterm/corvid/grid"
)

// newTestTerm builds a Term sized to exactly lines x cols cells, with no PTY
// attached, so Resize/pty notifications are a no-op for these tests.
func newTestTerm(lines, cols int) *Term {
	return NewTerm(Options{
		WidthPx: float32(cols), HeightPx: float32(lines),
		CellWidth: 1, CellHeight: 1,
		Fg: grid.Rgb{R: 255, G: 255, B: 255},
		Bg: grid.Rgb{R: 0, G: 0, B: 0},
	})
}

func (t *Term) cellRune(l grid.Line, c grid.Column) rune {
	return t.activeGrid().Cell(l, c).C
}

func TestNewTermSizesFromPixelGeometry(t *testing.T) {
	term := newTestTerm(5, 10)
	if term.Lines() != 5 || term.Cols() != 10 {
		t.Fatalf("dims = %dx%d, want 5x10", term.Lines(), term.Cols())
	}
}

func TestInputAdvancesCursorAndSetsPendingWrap(t *testing.T) {
	term := newTestTerm(3, 3)
	term.Input('a')
	term.Input('b')
	term.Input('c')
	_, col := term.CursorPos()
	if col != 3 {
		t.Fatalf("col after filling row = %d, want 3 (pending wrap)", col)
	}
	if got := term.cellRune(0, 2); got != 'c' {
		t.Errorf("cell(0,2) = %q, want 'c'", got)
	}
}

func TestInputWrapsAtPendingColumn(t *testing.T) {
	term := newTestTerm(3, 2)
	term.Input('a')
	term.Input('b')
	term.Input('c')
	line, col := term.CursorPos()
	if line != 1 || col != 1 {
		t.Fatalf("pos after wrap = (%d,%d), want (1,1)", line, col)
	}
	if got := term.cellRune(1, 0); got != 'c' {
		t.Errorf("cell(1,0) = %q, want 'c'", got)
	}
}

func TestInputScrollsWhenWrappingPastLastLine(t *testing.T) {
	term := newTestTerm(3, 1)
	term.Input('a')
	term.Input('b')
	term.Input('c')
	term.Input('d')
	line, _ := term.CursorPos()
	if line != 2 {
		t.Fatalf("line after scroll-wrap = %d, want 2 (stays on the last line)", line)
	}
	if got := term.cellRune(0, 0); got != 'b' {
		t.Errorf("cell(0,0) = %q, want 'b' (moved up from row 1 by the scroll)", got)
	}
	if got := term.cellRune(2, 0); got != 'd' {
		t.Errorf("cell(2,0) = %q, want 'd' (newest char written on the last line)", got)
	}
}

func TestInputWrapScrollsInsideScrollRegion(t *testing.T) {
	term := newTestTerm(5, 2)
	term.SetScrollingRegion(0, 3)
	term.Goto(2, 0)
	term.Input('a')
	term.Input('b')
	// Pending wrap at the last region line: the wrap takes the linefeed
	// path and scrolls within the region instead of stepping the cursor
	// below it.
	term.Input('c')

	line, col := term.CursorPos()
	if line != 2 || col != 1 {
		t.Fatalf("pos after region-bound wrap = (%d,%d), want (2,1)", line, col)
	}
	// The last region line sits outside scrollUpRelative's shifted span, so
	// 'c' lands over the old content rather than on a fresh blank line.
	if got := term.cellRune(2, 0); got != 'c' {
		t.Errorf("cell(2,0) = %q, want 'c'", got)
	}
	if got := term.cellRune(3, 0); got != ' ' {
		t.Errorf("cell(3,0) = %q, want ' ' (below the region, untouched)", got)
	}
}

func TestRepeatCharRepeatsLastWritten(t *testing.T) {
	term := newTestTerm(1, 5)
	term.Input('x')
	term.RepeatChar(3)
	for c := grid.Column(1); c < 4; c++ {
		if got := term.cellRune(0, c); got != 'x' {
			t.Errorf("cell(0,%d) = %q, want 'x'", c, got)
		}
	}
}

func TestRepeatCharNoopWithNothingWritten(t *testing.T) {
	term := newTestTerm(1, 5)
	term.RepeatChar(3)
	line, col := term.CursorPos()
	if line != 0 || col != 0 {
		t.Fatalf("pos = (%d,%d), want (0,0) (RepeatChar with no prior input is a no-op)", line, col)
	}
}

func TestMoveDownClampsToLastLine(t *testing.T) {
	term := newTestTerm(3, 3)
	term.MoveDown(99)
	line, _ := term.CursorPos()
	if line != 2 {
		t.Errorf("line = %d, want 2 (clamped)", line)
	}
}

func TestMoveForwardClampsToLastCol(t *testing.T) {
	term := newTestTerm(3, 3)
	term.MoveForward(99)
	_, col := term.CursorPos()
	if col != 2 {
		t.Errorf("col = %d, want 2 (clamped)", col)
	}
}

func TestMoveUpSaturatesAtZero(t *testing.T) {
	term := newTestTerm(3, 3)
	term.MoveUp(99)
	line, _ := term.CursorPos()
	if line != 0 {
		t.Errorf("line = %d, want 0", line)
	}
}

func TestBackspaceStopsAtColumnZero(t *testing.T) {
	term := newTestTerm(1, 3)
	term.Backspace()
	_, col := term.CursorPos()
	if col != 0 {
		t.Errorf("col = %d, want 0", col)
	}
}

func TestLinefeedScrollsAtScrollRegionBottom(t *testing.T) {
	term := newTestTerm(3, 1)
	term.Goto(0, 0)
	term.Input('a')
	term.Goto(1, 0)
	term.Input('b')
	term.Goto(2, 0)
	term.Input('c')

	term.CarriageReturn()
	term.Linefeed()

	// scrollUpRelative blanks the top `lines` rows of the region first, then
	// slides the rest up over them — it is not the usual "shift up, blank
	// bottom" scroll. Row 2's content survives untouched; row 0 ends up with
	// row 1's content, not blank.
	if got := term.cellRune(0, 0); got != 'b' {
		t.Errorf("cell(0,0) = %q, want 'b'", got)
	}
	if got := term.cellRune(2, 0); got != 'c' {
		t.Errorf("cell(2,0) = %q, want 'c' (outside the shifted span, untouched)", got)
	}
}

func TestReverseIndexScrollsDownAtScrollRegionTop(t *testing.T) {
	term := newTestTerm(3, 1)
	term.Goto(0, 0)
	term.Input('a')
	term.Goto(1, 0)
	term.Input('b')
	term.Goto(2, 0)
	term.Input('c')

	term.Goto(0, 0)
	term.ReverseIndex()

	// scrollDownRelative clears the bottom line first, then slides the rest
	// of the region down — so row 0's original content lands in row 1, and
	// row 1's own prior content is overwritten rather than preserved. See
	// scrollDownRelative's doc comment.
	if got := term.cellRune(0, 0); got != 'a' {
		t.Errorf("cell(0,0) = %q, want 'a' (top row untouched)", got)
	}
	if got := term.cellRune(1, 0); got != 'a' {
		t.Errorf("cell(1,0) = %q, want 'a' (copied down from row 0)", got)
	}
	if got := term.cellRune(2, 0); got != ' ' {
		t.Errorf("cell(2,0) = %q, want ' ' (cleared)", got)
	}
}

func fillLine(term *Term, l grid.Line, s string) {
	row := term.activeGrid().Row(l)
	for i, r := range s {
		row[i].C = r
	}
}

func lineString(term *Term, l grid.Line) string {
	row := term.activeGrid().Row(l)
	out := make([]rune, len(row))
	for i, c := range row {
		out[i] = c.C
	}
	return string(out)
}

func TestInsertBlankShiftsRightAndClampsToLineEnd(t *testing.T) {
	term := newTestTerm(1, 4)
	fillLine(term, 0, "ABCD")
	term.Goto(0, 1)
	term.InsertBlank(2)
	if got := lineString(term, 0); got != "A  B" {
		t.Errorf("row = %q, want %q", got, "A  B")
	}
}

func TestDeleteCharsShiftsLeftAndBlanksTail(t *testing.T) {
	term := newTestTerm(1, 4)
	fillLine(term, 0, "ABCD")
	term.Goto(0, 1)
	term.DeleteChars(2)
	if got := lineString(term, 0); got != "AD  " {
		t.Errorf("row = %q, want %q", got, "AD  ")
	}
}

func TestEraseCharsResetsWithoutShifting(t *testing.T) {
	term := newTestTerm(1, 4)
	fillLine(term, 0, "ABCD")
	term.Goto(0, 1)
	term.EraseChars(2)
	if got := lineString(term, 0); got != "A  D" {
		t.Errorf("row = %q, want %q", got, "A  D")
	}
}

func TestClearLineModes(t *testing.T) {
	cases := []struct {
		name string
		mode LineClearMode
		want string
	}{
		{"right", LineClearRight, "AB  "},
		{"left", LineClearLeft, "   D"},
		{"all", LineClearAll, "    "},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			term := newTestTerm(1, 4)
			fillLine(term, 0, "ABCD")
			term.Goto(0, 2)
			term.ClearLine(c.mode)
			if got := lineString(term, 0); got != c.want {
				t.Errorf("row = %q, want %q", got, c.want)
			}
		})
	}
}

func TestPutTabAdvancesToTabStops(t *testing.T) {
	term := newTestTerm(1, 20)
	term.PutTab(1)
	if _, col := term.CursorPos(); col != 8 {
		t.Fatalf("col after one tab = %d, want 8", col)
	}
	// The stop test runs before any advance, so a cursor already on a tab
	// stop does not move.
	term.PutTab(1)
	if _, col := term.CursorPos(); col != 8 {
		t.Fatalf("col after tabbing from a stop = %d, want 8 (unmoved)", col)
	}
	term.Goto(0, 9)
	term.PutTab(1)
	if _, col := term.CursorPos(); col != 16 {
		t.Fatalf("col = %d, want 16", col)
	}
	term.Goto(0, 17)
	term.PutTab(1)
	if _, col := term.CursorPos(); col != 20 {
		t.Errorf("col after tabbing past the last stop = %d, want 20 (pending wrap)", col)
	}
}

func TestScrollUpThenDownPinsLayout(t *testing.T) {
	term := newTestTerm(5, 1)
	for l := 0; l < 5; l++ {
		fillLine(term, grid.Line(l), string(rune('a'+l)))
	}
	term.ScrollUp(1)
	term.ScrollDown(1)
	// The clear-then-shift algorithm keeps the middle rows intact across a
	// round trip; the edges don't come back blank-for-blank (row 0 carries a
	// duplicate, row 4 is cleared).
	want := []rune{'b', 'b', 'c', 'd', ' '}
	for l := 0; l < 5; l++ {
		if got := term.cellRune(grid.Line(l), 0); got != want[l] {
			t.Errorf("row %d = %q, want %q", l, got, want[l])
		}
	}
}

func TestInsertBlankLinesShiftsWithinRegion(t *testing.T) {
	term := newTestTerm(4, 1)
	for l := 0; l < 4; l++ {
		fillLine(term, grid.Line(l), string(rune('a'+l)))
	}
	term.Goto(1, 0)
	term.InsertBlankLines(1)
	if got := term.cellRune(0, 0); got != 'a' {
		t.Errorf("row 0 = %q, want 'a' (above the cursor, untouched)", got)
	}
	if got := term.cellRune(2, 0); got != 'b' {
		t.Errorf("row 2 = %q, want 'b' (shifted down from the cursor line)", got)
	}
}

func TestDeleteLinesNoopOutsideScrollRegion(t *testing.T) {
	term := newTestTerm(5, 1)
	term.SetScrollingRegion(0, 3)
	fillLine(term, 4, "x")
	term.Goto(4, 0)
	term.DeleteLines(1)
	if got := term.cellRune(4, 0); got != 'x' {
		t.Errorf("row 4 = %q, want 'x' (cursor outside the region, no-op)", got)
	}
}

func TestSetScrollingRegionMovesCursorHome(t *testing.T) {
	term := newTestTerm(5, 5)
	term.Goto(3, 3)
	term.SetScrollingRegion(1, 4)
	line, col := term.CursorPos()
	if line != 0 || col != 0 {
		t.Errorf("pos after SetScrollingRegion = (%d,%d), want (0,0)", line, col)
	}
}

func TestClearScreenBelowPreservesRowsAboveCursor(t *testing.T) {
	term := newTestTerm(3, 1)
	term.Goto(0, 0)
	term.Input('a')
	term.Goto(1, 0)
	term.Input('b')
	term.Goto(2, 0)
	term.Input('c')
	term.Goto(1, 0)
	term.ClearScreen(ClearBelow)
	if got := term.cellRune(0, 0); got != 'a' {
		t.Errorf("cell(0,0) = %q, want 'a' (untouched by ClearBelow)", got)
	}
	if got := term.cellRune(1, 0); got != ' ' {
		t.Errorf("cell(1,0) = %q, want ' ' (cleared)", got)
	}
	if got := term.cellRune(2, 0); got != ' ' {
		t.Errorf("cell(2,0) = %q, want ' ' (cleared)", got)
	}
}

func TestClearScreenAllClearsEverything(t *testing.T) {
	term := newTestTerm(2, 2)
	term.Input('a')
	term.ClearScreen(ClearAll)
	if got := term.cellRune(0, 0); got != ' ' {
		t.Errorf("cell(0,0) = %q, want ' '", got)
	}
}

func TestClearScreenAbovePanics(t *testing.T) {
	term := newTestTerm(2, 2)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for ClearMode Above")
		}
	}()
	term.ClearScreen(ClearAbove)
}

func TestSwapAltClearsWhicheverGridBecomesActive(t *testing.T) {
	term := newTestTerm(2, 2)
	term.Input('a')
	term.SetMode(ModeSwapScreenAndSetRestoreCursor)
	if got := term.cellRune(0, 0); got != ' ' {
		t.Errorf("alt screen cell(0,0) = %q, want ' ' (fresh on swap)", got)
	}
	term.Input('z')
	term.UnsetMode(ModeSwapScreenAndSetRestoreCursor)
	// swapAlt clears whichever grid it switches into every time, including
	// switching back to primary — so 'a' does not survive a round trip.
	if got := term.cellRune(0, 0); got != ' ' {
		t.Errorf("primary screen cell(0,0) = %q, want ' ' (cleared again on swap back)", got)
	}
}

func TestResizeSameDimensionsIsNoop(t *testing.T) {
	term := newTestTerm(3, 3)
	term.Input('a')
	term.Resize(3, 3)
	if got := term.cellRune(0, 0); got != 'a' {
		t.Errorf("cell(0,0) = %q after no-op resize, want 'a'", got)
	}
}

func TestResizeScrollsContentWhenCursorFallsOffBottom(t *testing.T) {
	term := newTestTerm(3, 1)
	term.Goto(0, 0)
	term.Input('a')
	term.Goto(1, 0)
	term.Input('b')
	term.Goto(2, 0)
	term.Input('c')

	term.Resize(1, 2)

	line, _ := term.CursorPos()
	if line != 1 {
		t.Fatalf("cursor line after shrink = %d, want 1 (new last line)", line)
	}
	if got := term.cellRune(0, 0); got != 'b' {
		t.Errorf("cell(0,0) = %q, want 'b' (content scrolled up to preserve the cursor's line)", got)
	}
	// Resize clears from the cursor's (post-scroll) line to the bottom, so
	// row 1 ends up blank rather than keeping 'c'.
	if got := term.cellRune(1, 0); got != ' ' {
		t.Errorf("cell(1,0) = %q, want ' ' (cleared by resize's post-scroll clear-to-bottom)", got)
	}
}

func TestTerminalAttributeResetRestoresTemplate(t *testing.T) {
	term := newTestTerm(1, 1)
	term.TerminalAttribute(Attribute{Kind: AttrBold})
	term.TerminalAttribute(Attribute{Kind: AttrReset})
	term.Input('a')
	if got := term.cellRune(0, 0); got != 'a' {
		t.Fatalf("cell(0,0) = %q, want 'a'", got)
	}
	if term.activeGrid().Cell(0, 0).Flags&grid.FlagBold != 0 {
		t.Error("bold flag should be cleared after AttrReset")
	}
}
