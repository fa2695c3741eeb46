package term

import (
	"log"
	"sync"

	"github.com/corvidterm/corvid/grid"
)

const tabSpaces = 8

// Options configures a new Term.
type Options struct {
	WidthPx, HeightPx     float32
	CellWidth, CellHeight float32
	Fg, Bg                grid.Rgb
	Palette               [16]grid.Rgb
	PTY                   PTY
}

// Term owns the primary and alternate screen buffers, the cursor(s), and
// the full set of mutable terminal state (mode flags, scroll region, tab
// stops, palette). It implements Handler, which is driven by an external
// VT parser, and it hands out RenderGrid snapshots to a renderer. Both
// paths serialize on mu: the parser holds it for one Process() batch, the
// renderer holds it for one RenderGrid scope (see rendergrid.go).
type Term struct {
	mu sync.Mutex

	grid    *grid.Grid
	altGrid *grid.Grid
	alt     bool

	cursor    grid.Cursor
	altCursor grid.Cursor

	tabs []bool

	mode         TermMode
	scrollRegion grid.LineRange
	size         SizeInfo

	templateCell grid.Cell
	emptyCell    grid.Cell
	colors       [16]grid.Rgb
	fg, bg       grid.Rgb

	lastWrittenCell grid.Cell
	haveLastWritten bool

	dirty      bool
	pty        PTY
	workingDir string
}

// NewTerm builds a Term sized from opts' pixel geometry and cell metrics.
// Both the primary and alternate grids start at that size, filled with the
// default-colored empty cell.
func NewTerm(opts Options) *Term {
	size := SizeInfo{
		WidthPx: opts.WidthPx, HeightPx: opts.HeightPx,
		CellWidth: opts.CellWidth, CellHeight: opts.CellHeight,
	}
	lines, cols := size.Lines(), size.Cols()

	empty := grid.Cell{C: ' ', Fg: opts.Fg, Bg: opts.Bg}
	primary := grid.NewGrid(lines, cols, empty)

	t := &Term{
		grid:         primary,
		altGrid:      primary.Clone(),
		tabs:         buildTabs(cols),
		mode:         DefaultTermMode(),
		scrollRegion: grid.NewLineRange(0, grid.Line(lines)),
		size:         size,
		templateCell: empty,
		emptyCell:    empty,
		colors:       opts.Palette,
		fg:           opts.Fg,
		bg:           opts.Bg,
		pty:          opts.PTY,
	}
	return t
}

// buildTabs returns a tab-stop table for cols columns: a stop every
// tabSpaces columns, with column 0 explicitly not a stop (the cursor never
// needs to tab to its own starting column).
func buildTabs(cols int) []bool {
	tabs := make([]bool, cols)
	for i := 0; i < cols; i += tabSpaces {
		tabs[i] = true
	}
	if len(tabs) > 0 {
		tabs[0] = false
	}
	return tabs
}

// Lock acquires the single mutex shared with RenderGrid. The ansi parser
// calls this once per Process() batch, not once per Handler method, so an
// in-progress multi-byte escape sequence is never observed half-applied by
// a concurrent RenderGrid snapshot.
func (t *Term) Lock() { t.mu.Lock() }

// Unlock releases the lock taken by Lock.
func (t *Term) Unlock() { t.mu.Unlock() }

// Lines returns the active grid's current row count.
func (t *Term) Lines() int { return t.activeGrid().NumLines() }

// Cols returns the active grid's current column count.
func (t *Term) Cols() int { return t.activeGrid().NumCols() }

// Dirty reports whether any mutation has occurred since the last RenderGrid
// release.
func (t *Term) Dirty() bool { return t.dirty }

// CursorPos returns the active screen's cursor position as plain ints, for
// callers (the ansi layer's DSR/CPR handling) that need it without taking a
// dependency on the grid package's typed coordinates.
func (t *Term) CursorPos() (line, col int) {
	cur := t.activeCursor()
	return int(cur.Line), int(cur.Col)
}

// WorkingDir returns the last directory reported via OSC 7.
func (t *Term) WorkingDir() string { return t.workingDir }

// SetWorkingDir records a directory reported via OSC 7. It is called by
// the ansi layer, not by the Handler interface proper.
func (t *Term) SetWorkingDir(dir string) { t.workingDir = dir }

func (t *Term) activeGrid() *grid.Grid {
	if t.alt {
		return t.altGrid
	}
	return t.grid
}

func (t *Term) activeCursor() *grid.Cursor {
	if t.alt {
		return &t.altCursor
	}
	return &t.cursor
}

func (t *Term) markDirty() { t.dirty = true }

// ---- character input -------------------------------------------------

// Input writes c at the cursor, handling the pending-wrap sentinel: if the
// cursor sits at col == NumCols from a previous write, Input first wraps to
// the start of the next line before placing the new character. Line ==
// NumLines at this point is an invariant violation and panics; aborting is
// preferred to silently corrupting the grid.
func (t *Term) Input(c rune) {
	g := t.activeGrid()
	cur := t.activeCursor()

	if int(cur.Col) >= g.NumCols() {
		t.wrapLine()
		cur = t.activeCursor()
	}
	if int(cur.Line) >= g.NumLines() {
		panic("term: cursor line out of bounds on input")
	}

	cell := g.CellAt(*cur)
	cell.Reset(t.templateCell)
	cell.C = c
	t.lastWrittenCell = *cell
	t.haveLastWritten = true
	cur.Col = cur.Col.Add(1)
	t.markDirty()
}

func (t *Term) wrapLine() {
	cur := t.activeCursor()
	if int(cur.Line)+1 >= int(t.scrollRegion.End) {
		t.Linefeed()
	} else {
		cur.Line = cur.Line.Add(1)
	}
	cur.Col = 0
}

// RepeatChar implements REP (CSI b): repeat the last written character
// count more times. It is just Input called in a loop.
func (t *Term) RepeatChar(count int) {
	if !t.haveLastWritten {
		return
	}
	c := t.lastWrittenCell.C
	for i := 0; i < count; i++ {
		t.Input(c)
	}
}

// ---- cursor motion ----------------------------------------------------

// Goto moves the cursor to an absolute position. Unlike MoveUp/Down/
// Forward/Backward, Goto does not clamp: callers (the ansi layer) are
// responsible for clamping CSI parameters to the current grid bounds
// before calling it.
func (t *Term) Goto(line grid.Line, col grid.Column) {
	cur := t.activeCursor()
	cur.Line = line
	cur.Col = col
	t.markDirty()
}

func (t *Term) GotoLine(line grid.Line) {
	t.activeCursor().Line = line
	t.markDirty()
}

func (t *Term) GotoCol(col grid.Column) {
	t.activeCursor().Col = col
	t.markDirty()
}

func (t *Term) MoveUp(n int) {
	cur := t.activeCursor()
	cur.Line = cur.Line.Sub(uint32(n))
	t.markDirty()
}

func (t *Term) MoveDown(n int) {
	cur := t.activeCursor()
	maxLine := grid.Line(t.activeGrid().NumLines() - 1)
	cur.Line = cur.Line.Add(uint32(n))
	if cur.Line > maxLine {
		cur.Line = maxLine
	}
	t.markDirty()
}

func (t *Term) MoveForward(n int) {
	cur := t.activeCursor()
	maxCol := grid.Column(t.activeGrid().NumCols() - 1)
	cur.Col = cur.Col.Add(uint32(n))
	if cur.Col > maxCol {
		cur.Col = maxCol
	}
	t.markDirty()
}

func (t *Term) MoveBackward(n int) {
	cur := t.activeCursor()
	cur.Col = cur.Col.Sub(uint32(n))
	t.markDirty()
}

func (t *Term) MoveDownAndCR(n int) {
	log.Printf("term: MoveDownAndCR(%d) not implemented", n)
}

func (t *Term) MoveUpAndCR(n int) {
	log.Printf("term: MoveUpAndCR(%d) not implemented", n)
}

func (t *Term) Backspace() {
	cur := t.activeCursor()
	if cur.Col > 0 {
		cur.Col = cur.Col.Sub(1)
		t.markDirty()
	}
}

func (t *Term) CarriageReturn() {
	t.activeCursor().Col = 0
	t.markDirty()
}

func (t *Term) Linefeed() {
	cur := t.activeCursor()
	if cur.Line == t.scrollRegion.End.Sub(1) {
		t.scrollUpRelative(t.scrollRegion, 1)
	} else if int(cur.Line)+1 < t.activeGrid().NumLines() {
		cur.Line = cur.Line.Add(1)
	}
	t.markDirty()
}

func (t *Term) ReverseIndex() {
	cur := t.activeCursor()
	if cur.Line == t.scrollRegion.Start {
		t.scrollDownRelative(t.scrollRegion, 1)
	} else {
		cur.Line = cur.Line.Sub(1)
	}
	t.markDirty()
}

// PutTab advances the cursor to tab stops. The stop test runs before any
// advance, so a cursor already sitting on a stop stays put, and the column
// may come to rest at NumCols — the pending-wrap sentinel.
func (t *Term) PutTab(count int) {
	cur := t.activeCursor()
	cols := t.activeGrid().NumCols()
	col := int(cur.Col)
	for col < cols && count != 0 {
		count--
		for col < cols && !t.tabs[col] {
			col++
		}
	}
	cur.Col = grid.Column(col)
	t.markDirty()
}

func (t *Term) SetHorizontalTabstop() {
	log.Printf("term: SetHorizontalTabstop not implemented")
}

func (t *Term) MoveBackwardTabs(n int) {
	log.Printf("term: MoveBackwardTabs(%d) not implemented", n)
}

func (t *Term) MoveForwardTabs(n int) {
	log.Printf("term: MoveForwardTabs(%d) not implemented", n)
}

func (t *Term) ClearTabs(mode int) {
	log.Printf("term: ClearTabs(%d) not implemented", mode)
}

// ---- scrolling ----------------------------------------------------

// ScrollUp implements CSI S: scroll the scrolling region up by n, origin at
// the region's start, regardless of cursor position.
func (t *Term) ScrollUp(n int) {
	t.scrollUpRelative(t.scrollRegion, n)
	t.markDirty()
}

// ScrollDown implements CSI T.
func (t *Term) ScrollDown(n int) {
	t.scrollDownRelative(t.scrollRegion, n)
	t.markDirty()
}

// scrollUpRelative first blanks the top `lines` rows of region, then
// slides the grid's own ScrollUp over [region.Start, region.End-lines).
// This is NOT equivalent to "shift everything up and blank the bottom",
// even for lines == 1: the last `lines` rows of the region sit outside the
// shifted span and keep their content.
func (t *Term) scrollUpRelative(region grid.LineRange, lines int) {
	if lines <= 0 {
		return
	}
	g := t.activeGrid()
	span := region.Len()
	if lines > span {
		lines = span
	}

	clearEnd := region.Start.Add(uint32(lines))
	if clearEnd > region.End {
		clearEnd = region.End
	}
	g.ClearRegion(grid.NewLineRange(region.Start, clearEnd), func(c *grid.Cell) {
		c.Reset(t.emptyCell)
	})

	shiftRegion := grid.NewLineRange(region.Start, region.End.Sub(uint32(lines)))
	g.ScrollUp(shiftRegion, lines)
}

// scrollDownRelative mirrors scrollUpRelative: clear the bottom `lines`
// rows of region, then apply the grid's own ScrollDown to
// [region.Start, region.End-lines). The cleared rows lie outside that span
// and stay blank; the first `lines` rows of the region keep their content.
func (t *Term) scrollDownRelative(region grid.LineRange, lines int) {
	if lines <= 0 {
		return
	}
	g := t.activeGrid()
	span := region.Len()
	if lines > span {
		lines = span
	}

	clearStart := region.End.Sub(uint32(lines))
	g.ClearRegion(grid.NewLineRange(clearStart, region.End), func(c *grid.Cell) {
		c.Reset(t.emptyCell)
	})

	shiftRegion := grid.NewLineRange(region.Start, region.End.Sub(uint32(lines)))
	g.ScrollDown(shiftRegion, lines)
}

func (t *Term) SetScrollingRegion(top, bottom grid.Line) {
	t.scrollRegion = grid.NewLineRange(top, bottom)
	t.Goto(0, 0)
	t.markDirty()
}

// ---- line/character editing -------------------------------------------

// InsertBlankLines runs scrollDownRelative over [cursor line, region end):
// the bottom n lines of that span are blanked and the lines above them
// shift down by n inside [cursor line, region end - n). The n lines at the
// cursor are not blanked; they keep their content. A no-op unless the
// cursor is inside the scroll region.
func (t *Term) InsertBlankLines(n int) {
	cur := t.activeCursor()
	if !t.scrollRegion.Contains(cur.Line) {
		return
	}
	region := grid.NewLineRange(cur.Line, t.scrollRegion.End)
	t.scrollDownRelative(region, n)
	t.markDirty()
}

// DeleteLines runs scrollUpRelative over [cursor line, region end): the n
// lines at the cursor are blanked and the lines below them shift up by n
// inside [cursor line, region end - n). The bottom n lines of the region
// are not blanked; they keep their content. A no-op unless the cursor is
// inside the scroll region.
func (t *Term) DeleteLines(n int) {
	cur := t.activeCursor()
	if !t.scrollRegion.Contains(cur.Line) {
		return
	}
	region := grid.NewLineRange(cur.Line, t.scrollRegion.End)
	t.scrollUpRelative(region, n)
	t.markDirty()
}

// InsertBlank shifts the cells from the cursor to the end of line right by
// n, discarding what falls off the right edge, and blanks n cells at the
// cursor. n is clamped to the space remaining on the line.
func (t *Term) InsertBlank(n int) {
	cur := t.activeCursor()
	row := t.activeGrid().Row(cur.Line)
	cols := len(row)
	col := int(cur.Col)
	if n > cols-col {
		n = cols - col
	}
	if n <= 0 {
		return
	}
	copy(row[col+n:cols], row[col:cols-n])
	for i := col; i < col+n; i++ {
		row[i].Reset(t.emptyCell)
	}
	t.markDirty()
}

// DeleteChars shifts the cells after the cursor's n-cell window left,
// filling the vacated tail with blanks. n is clamped to the total column
// count, not to the remaining space on the line.
func (t *Term) DeleteChars(n int) {
	cur := t.activeCursor()
	row := t.activeGrid().Row(cur.Line)
	cols := len(row)
	if n > cols {
		n = cols
	}
	col := int(cur.Col)
	if col+n < cols {
		copy(row[col:cols-n], row[col+n:cols])
	}
	start := cols - n
	if start < col {
		start = col
	}
	for i := start; i < cols; i++ {
		row[i].Reset(t.emptyCell)
	}
	t.markDirty()
}

func (t *Term) EraseChars(n int) {
	cur := t.activeCursor()
	row := t.activeGrid().Row(cur.Line)
	cols := len(row)
	col := int(cur.Col)
	end := col + n
	if end > cols {
		end = cols
	}
	for i := col; i < end; i++ {
		row[i].Reset(t.emptyCell)
	}
	t.markDirty()
}

func (t *Term) ClearLine(mode LineClearMode) {
	cur := t.activeCursor()
	row := t.activeGrid().Row(cur.Line)
	cols := len(row)
	col := int(cur.Col)

	var start, end int
	switch mode {
	case LineClearRight:
		start, end = col, cols
	case LineClearLeft:
		start, end = 0, col+1
	case LineClearAll:
		start, end = 0, cols
	}
	for i := start; i < end; i++ {
		row[i].Reset(t.emptyCell)
	}
	t.markDirty()
}

// ClearScreen erases Below or All of the current grid. ClearAbove is not
// implemented and aborts rather than silently degrading.
func (t *Term) ClearScreen(mode ClearMode) {
	g := t.activeGrid()
	cur := t.activeCursor()

	switch mode {
	case ClearBelow:
		g.ClearRegion(grid.NewLineRange(cur.Line, grid.Line(g.NumLines())), func(c *grid.Cell) {
			c.Reset(t.emptyCell)
		})
		t.ClearLine(LineClearRight)
	case ClearAll:
		g.Clear(func(c *grid.Cell) { c.Reset(t.emptyCell) })
	case ClearAbove:
		panic("term: ClearMode Above not implemented")
	}
	t.markDirty()
}

// ---- modes and attributes ----------------------------------------------

func (t *Term) TerminalAttribute(attr Attribute) {
	switch attr.Kind {
	case AttrDefaultForeground:
		t.templateCell.Fg = t.fg
	case AttrDefaultBackground:
		t.templateCell.Bg = t.bg
	case AttrForeground:
		if int(attr.Index) < len(t.colors) {
			t.templateCell.Fg = t.colors[attr.Index]
		}
	case AttrBackground:
		if int(attr.Index) < len(t.colors) {
			t.templateCell.Bg = t.colors[attr.Index]
		}
	case AttrForegroundSpec:
		t.templateCell.Fg = attr.Rgb
	case AttrBackgroundSpec:
		t.templateCell.Bg = attr.Rgb
	case AttrReset:
		t.templateCell = t.emptyCell
	case AttrBold:
		t.templateCell.Flags |= grid.FlagBold
	case AttrCancelBold:
		t.templateCell.Flags &^= grid.FlagBold
	case AttrItalic:
		t.templateCell.Flags |= grid.FlagItalic
	case AttrCancelItalic:
		t.templateCell.Flags &^= grid.FlagItalic
	case AttrUnderscore:
		t.templateCell.Flags |= grid.FlagUnderline
	case AttrCancelUnderscore:
		t.templateCell.Flags &^= grid.FlagUnderline
	case AttrReverse:
		t.templateCell.Flags |= grid.FlagInverse
	case AttrCancelReverse:
		t.templateCell.Flags &^= grid.FlagInverse
	}
}

// swapAlt toggles which grid/cursor pair is active, and clears the grid
// being switched into: the screen presented after a swap always starts
// blank rather than keeping its contents from an earlier visit.
func (t *Term) swapAlt() {
	t.alt = !t.alt
	t.activeGrid().Clear(func(c *grid.Cell) { c.Reset(t.emptyCell) })
	t.markDirty()
}

// SetMode and UnsetMode both unconditionally call swapAlt for
// ModeSwapScreenAndSetRestoreCursor: the alt screen toggles the same way
// whether the mode is being set or unset.
func (t *Term) SetMode(mode ModeArg) {
	switch mode {
	case ModeSwapScreenAndSetRestoreCursor:
		t.swapAlt()
	case ModeShowCursorArg:
		t.mode |= ModeShowCursor
	case ModeCursorKeysArg:
		t.mode |= ModeAppCursor
	default:
		log.Printf("term: SetMode(%d) not implemented", mode)
	}
}

func (t *Term) UnsetMode(mode ModeArg) {
	switch mode {
	case ModeSwapScreenAndSetRestoreCursor:
		t.swapAlt()
	case ModeShowCursorArg:
		t.mode &^= ModeShowCursor
	case ModeCursorKeysArg:
		t.mode &^= ModeAppCursor
	default:
		log.Printf("term: UnsetMode(%d) not implemented", mode)
	}
}

func (t *Term) SetKeypadApplicationMode() {
	t.mode |= ModeAppKeypad
}

func (t *Term) UnsetKeypadApplicationMode() {
	t.mode &^= ModeAppKeypad
}

// ---- unimplemented, logged ---------------------------------------------

func (t *Term) IdentifyTerminal()    { log.Printf("term: IdentifyTerminal not implemented") }
func (t *Term) Substitute()          { log.Printf("term: Substitute not implemented") }
func (t *Term) Newline()             { log.Printf("term: Newline not implemented") }
func (t *Term) SaveCursorPosition()  { log.Printf("term: SaveCursorPosition not implemented") }
func (t *Term) RestoreCursorPosition() {
	log.Printf("term: RestoreCursorPosition not implemented")
}
func (t *Term) ResetState() { log.Printf("term: ResetState not implemented") }
func (t *Term) Bell()       {}

// ---- resize -------------------------------------------------------

// Resize recomputes the grid dimensions from new pixel geometry and cell
// metrics, resizing both the primary and alternate grids, then clears from
// the cursor's current line to the bottom of each grid. It does not
// attempt to reflow wrapped content, and it discards everything at or
// below the cursor's line rather than only the newly exposed rows.
func (t *Term) Resize(widthPx, heightPx float32) {
	t.size.WidthPx = widthPx
	t.size.HeightPx = heightPx
	lines, cols := t.size.Lines(), t.size.Cols()
	if lines == t.grid.NumLines() && cols == t.grid.NumCols() {
		return
	}

	// If the cursor would fall off the bottom of the shrunken grid, scroll
	// its content up by the overhang before truncating rows, so the lines
	// the cursor was on are preserved rather than simply cut off the
	// bottom.
	scrollOffBottom := func(g *grid.Grid, cur *grid.Cursor) {
		if int(cur.Line) < lines {
			return
		}
		n := int(cur.Line) - lines + 1
		full := grid.NewLineRange(0, grid.Line(g.NumLines()))
		g.ScrollUp(full, n)
		g.ClearRegion(grid.NewLineRange(grid.Line(g.NumLines()-n), grid.Line(g.NumLines())), func(c *grid.Cell) {
			c.Reset(t.emptyCell)
		})
		cur.Line = cur.Line.Sub(uint32(n))
	}
	scrollOffBottom(t.grid, &t.cursor)
	scrollOffBottom(t.altGrid, &t.altCursor)

	t.grid.Resize(lines, cols, t.emptyCell)
	t.altGrid.Resize(lines, cols, t.emptyCell)
	t.tabs = buildTabs(cols)
	t.scrollRegion = grid.NewLineRange(0, grid.Line(lines))

	clampCursor := func(cur *grid.Cursor) {
		if int(cur.Line) >= lines {
			cur.Line = grid.Line(lines - 1)
		}
		if int(cur.Col) >= cols {
			cur.Col = grid.Column(cols - 1)
		}
	}
	clampCursor(&t.cursor)
	clampCursor(&t.altCursor)

	t.grid.ClearRegion(grid.NewLineRange(t.cursor.Line, grid.Line(lines)), func(c *grid.Cell) {
		c.Reset(t.emptyCell)
	})
	t.altGrid.ClearRegion(grid.NewLineRange(t.altCursor.Line, grid.Line(lines)), func(c *grid.Cell) {
		c.Reset(t.emptyCell)
	})

	if t.pty != nil {
		if err := t.pty.Resize(lines, cols, int(widthPx), int(heightPx)); err != nil {
			log.Printf("term: pty resize failed: %v", err)
		}
	}
	t.markDirty()
}
