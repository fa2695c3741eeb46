package grid

// Rgb is a resolved 24-bit color. Palette lookups (indexed color, default
// fg/bg) happen once, in Term's attribute handling, against the cell
// template; a Cell only ever stores the resolved value.
type Rgb struct {
	R, G, B uint8
}

// CellFlags is a bit set of text attributes.
type CellFlags uint8

const (
	FlagInverse CellFlags = 1 << iota
	FlagBold
	FlagItalic
	FlagUnderline
)

// Cell is one character cell: a character plus its resolved foreground and
// background color and attribute flags. Cells are small value types and are
// copied, not pointed to, by Grid and by Term's template/empty cells.
type Cell struct {
	C     rune
	Fg    Rgb
	Bg    Rgb
	Flags CellFlags
}

// NewCell returns a blank cell: a space with zero-valued (black) colors and
// no attributes set.
func NewCell() Cell {
	return Cell{C: ' '}
}

// Reset overwrites every field of c from template. Cells are the hottest
// data in the system, so this is a flat struct copy rather than a
// field-by-field merge.
func (c *Cell) Reset(template Cell) {
	*c = template
}
