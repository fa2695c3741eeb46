package term

import "github.com/corvidterm/corvid/grid"

// AttrKind tags the variant held by an Attribute.
type AttrKind int

const (
	AttrDefaultForeground AttrKind = iota
	AttrDefaultBackground
	AttrForeground
	AttrBackground
	AttrForegroundSpec
	AttrBackgroundSpec
	AttrReset
	AttrBold
	AttrCancelBold
	AttrItalic
	AttrCancelItalic
	AttrUnderscore
	AttrCancelUnderscore
	AttrReverse
	AttrCancelReverse
)

// Attribute is an SGR attribute as decoded by the ansi layer. Index is used
// by AttrForeground/AttrBackground (an indexed palette slot 0-15); Rgb is
// used by AttrForegroundSpec/AttrBackgroundSpec (a literal 24-bit color).
type Attribute struct {
	Kind  AttrKind
	Index uint8
	Rgb   grid.Rgb
}

// ModeArg identifies a DEC private mode toggled by SetMode/UnsetMode.
// Modes this core does not recognize still reach the handler as
// ModeUnknown so the call can be logged rather than silently dropped.
type ModeArg int

const (
	ModeUnknown ModeArg = iota
	ModeSwapScreenAndSetRestoreCursor
	ModeShowCursorArg
	ModeCursorKeysArg
)

// LineClearMode selects how much of the cursor's line ClearLine erases.
type LineClearMode int

const (
	LineClearRight LineClearMode = iota
	LineClearLeft
	LineClearAll
)

// ClearMode selects how much of the screen ClearScreen erases.
type ClearMode int

const (
	ClearBelow ClearMode = iota
	ClearAll
	ClearAbove
)

// TermInfo is the subset of Term the ansi parser needs to make sizing
// decisions (e.g. clamping a CSI parameter to the current column count)
// without taking a dependency on the rest of Term's surface.
type TermInfo interface {
	Lines() int
	Cols() int
	CursorPos() (line, col int)
}

// PTY is the external pseudo-terminal collaborator, consumed here only as
// an interface so Term can forward resize notifications to it.
type PTY interface {
	Resize(lines, cols, widthPx, heightPx int) error
}

// Handler is the full set of operations the external VT/ANSI parser drives
// a terminal screen through. No method takes the lock itself: the caller
// holds it, and the parser brackets an entire Process() batch with a single
// Lock/Unlock pair (see Term.Lock) so a multi-byte escape sequence mutates
// state atomically with respect to a concurrent RenderGrid snapshot.
//
// Methods with no interesting terminal effect (the unimplemented group
// below) still must not return an error: an unimplemented operation is
// logged and ignored, never surfaced as a failure.
type Handler interface {
	// Character input.
	Input(c rune)
	RepeatChar(count int)

	// Cursor motion.
	Goto(line grid.Line, col grid.Column)
	GotoLine(line grid.Line)
	GotoCol(col grid.Column)
	MoveUp(n int)
	MoveDown(n int)
	MoveForward(n int)
	MoveBackward(n int)
	Backspace()
	CarriageReturn()
	Linefeed()
	ReverseIndex()
	PutTab(count int)

	// Scrolling.
	ScrollUp(n int)
	ScrollDown(n int)
	SetScrollingRegion(top, bottom grid.Line)

	// Line/character editing.
	InsertBlankLines(n int)
	DeleteLines(n int)
	InsertBlank(n int)
	DeleteChars(n int)
	EraseChars(n int)
	ClearLine(mode LineClearMode)
	ClearScreen(mode ClearMode)

	// Modes and attributes.
	TerminalAttribute(attr Attribute)
	SetMode(mode ModeArg)
	UnsetMode(mode ModeArg)
	SetKeypadApplicationMode()
	UnsetKeypadApplicationMode()

	// Unimplemented but logged: kept as named no-ops since a future
	// parser may still call them.
	IdentifyTerminal()
	MoveDownAndCR(n int)
	MoveUpAndCR(n int)
	Substitute()
	Newline()
	SetHorizontalTabstop()
	MoveBackwardTabs(n int)
	MoveForwardTabs(n int)
	SaveCursorPosition()
	RestoreCursorPosition()
	ClearTabs(mode int)
	ResetState()
	Bell()
}
