package grid

import "testing"

func cellC(r rune) Cell { return Cell{C: r} }

func fillRow(g *Grid, l Line, r rune) {
	row := g.Row(l)
	for i := range row {
		row[i] = cellC(r)
	}
}

func rowRunes(g *Grid, l Line) []rune {
	row := g.Row(l)
	out := make([]rune, len(row))
	for i, c := range row {
		out[i] = c.C
	}
	return out
}

func TestNewGridFillsTemplate(t *testing.T) {
	g := NewGrid(3, 4, cellC('x'))
	for l := Line(0); int(l) < 3; l++ {
		for _, c := range rowRunes(g, l) {
			if c != 'x' {
				t.Fatalf("cell = %q, want 'x'", c)
			}
		}
	}
}

func TestCellOutOfBoundsPanics(t *testing.T) {
	g := NewGrid(2, 2, NewCell())
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-bounds Cell access")
		}
	}()
	g.Cell(5, 0)
}

func TestContainsTreatsPendingWrapColumnAsValid(t *testing.T) {
	g := NewGrid(2, 4, NewCell())
	if !g.Contains(Cursor{Line: 0, Col: 4}) {
		t.Error("Contains should accept col == NumCols (pending wrap)")
	}
	if g.Contains(Cursor{Line: 0, Col: 5}) {
		t.Error("Contains should reject col > NumCols")
	}
	if g.Contains(Cursor{Line: 2, Col: 0}) {
		t.Error("Contains should reject line == NumLines")
	}
}

func TestScrollUpShiftsRowsAndLeavesBottomUntouched(t *testing.T) {
	g := NewGrid(4, 1, cellC(' '))
	for l := 0; l < 4; l++ {
		fillRow(g, Line(l), rune('a'+l))
	}
	g.ScrollUp(NewLineRange(0, 4), 2)
	want := []rune{'c', 'd', 'c', 'd'}
	for l := 0; l < 4; l++ {
		got := rowRunes(g, Line(l))[0]
		if got != want[l] {
			t.Errorf("row %d = %q, want %q", l, got, want[l])
		}
	}
}

func TestScrollDownShiftsRowsAndLeavesTopUntouched(t *testing.T) {
	g := NewGrid(4, 1, cellC(' '))
	for l := 0; l < 4; l++ {
		fillRow(g, Line(l), rune('a'+l))
	}
	g.ScrollDown(NewLineRange(0, 4), 2)
	want := []rune{'a', 'b', 'a', 'b'}
	for l := 0; l < 4; l++ {
		got := rowRunes(g, Line(l))[0]
		if got != want[l] {
			t.Errorf("row %d = %q, want %q", l, got, want[l])
		}
	}
}

func TestScrollUpWithinSubregionLeavesOutsideRowsAlone(t *testing.T) {
	g := NewGrid(4, 1, cellC(' '))
	for l := 0; l < 4; l++ {
		fillRow(g, Line(l), rune('a'+l))
	}
	g.ScrollUp(NewLineRange(1, 3), 1)
	want := []rune{'a', 'c', 'c', 'd'}
	for l := 0; l < 4; l++ {
		got := rowRunes(g, Line(l))[0]
		if got != want[l] {
			t.Errorf("row %d = %q, want %q", l, got, want[l])
		}
	}
}

func TestScrollClampsCountToRegionSpan(t *testing.T) {
	g := NewGrid(3, 1, cellC(' '))
	for l := 0; l < 3; l++ {
		fillRow(g, Line(l), rune('a'+l))
	}
	g.ScrollUp(NewLineRange(0, 3), 99)
	want := []rune{'a', 'b', 'c'}
	for l := 0; l < 3; l++ {
		if got := rowRunes(g, Line(l))[0]; got != want[l] {
			t.Errorf("row %d = %q, want %q (count clamped to span leaves nothing to shift)", l, got, want[l])
		}
	}
}

func TestResizeGrowsPreservingTopLeft(t *testing.T) {
	g := NewGrid(2, 2, cellC('.'))
	g.Cell(0, 0).C = 'a'
	g.Cell(1, 1).C = 'b'
	g.Resize(3, 3, cellC('.'))
	if g.NumLines() != 3 || g.NumCols() != 3 {
		t.Fatalf("dims = %dx%d, want 3x3", g.NumLines(), g.NumCols())
	}
	if g.Cell(0, 0).C != 'a' || g.Cell(1, 1).C != 'b' {
		t.Error("resize did not preserve existing content")
	}
	if g.Cell(2, 2).C != '.' {
		t.Error("new cells should be filled with template")
	}
}

func TestResizeShrinksTruncatingFromBottomRight(t *testing.T) {
	g := NewGrid(3, 3, cellC('.'))
	g.Cell(0, 0).C = 'a'
	g.Resize(1, 1, cellC('.'))
	if g.NumLines() != 1 || g.NumCols() != 1 {
		t.Fatalf("dims = %dx%d, want 1x1", g.NumLines(), g.NumCols())
	}
	if g.Cell(0, 0).C != 'a' {
		t.Error("resize-shrink should preserve top-left content")
	}
}

func TestResizeClampsToMinimumOne(t *testing.T) {
	g := NewGrid(3, 3, NewCell())
	g.Resize(0, 0, NewCell())
	if g.NumLines() != 1 || g.NumCols() != 1 {
		t.Errorf("dims = %dx%d, want 1x1 (clamped)", g.NumLines(), g.NumCols())
	}
}

func TestResizeSameDimensionsIsNoop(t *testing.T) {
	g := NewGrid(2, 2, cellC('.'))
	g.Cell(0, 0).C = 'z'
	g.Resize(2, 2, cellC('x'))
	if g.Cell(0, 0).C != 'z' {
		t.Error("resize to identical dimensions must not touch existing cells")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := NewGrid(2, 2, cellC('a'))
	clone := g.Clone()
	clone.Cell(0, 0).C = 'b'
	if g.Cell(0, 0).C != 'a' {
		t.Error("mutating a clone must not affect the original")
	}
}
