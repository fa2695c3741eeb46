// Package ansi implements the byte-level ANSI/VT escape sequence parser
// that drives a term.Handler from raw PTY output. term never imports this
// package; it only exposes the Handler interface this package calls.
package ansi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/corvidterm/corvid/grid"
	"github.com/corvidterm/corvid/term"
)

type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateCSI
	stateOSC
	stateCharset
	stateHash
)

// Parser decodes a byte stream into calls against a term.Handler, holding
// the handler's TermInfo for bounds-clamping and a ResponseWriter for
// DSR/CPR replies. One Parser instance owns all parser-local state (escape
// sequence accumulation, UTF-8 decode buffer, DECCKM/DECTCEM flags); SGR
// attributes are forwarded to the handler, not kept here. The lock belongs
// to Term; Process takes it through the Locker for the length of each call.
type Parser struct {
	handler term.Handler
	info    term.TermInfo
	locker  interface {
		Lock()
		Unlock()
	}

	state     parserState
	csiParams string
	oscParams string

	appCursorKeys  bool
	cursorVisible  bool
	privateMode    bool
	responseWriter func([]byte)
	workingDirSink func(string)

	utf8Buf       []byte
	utf8Remaining int
}

// Locker is the subset of Term's surface the parser needs to bracket an
// entire Process() call in a single lock/unlock pair.
type Locker interface {
	Lock()
	Unlock()
}

// NewParser builds a Parser that drives handler, using info to clamp
// parameters to the current grid bounds.
func NewParser(handler term.Handler, info term.TermInfo, locker Locker) *Parser {
	return &Parser{
		handler:       handler,
		info:          info,
		locker:        locker,
		cursorVisible: true,
	}
}

// SetResponseWriter installs the callback used to write DSR/CPR replies
// back to the PTY.
func (p *Parser) SetResponseWriter(w func([]byte)) { p.responseWriter = w }

// SetWorkingDirSink installs the callback invoked with the path reported by
// an OSC 7 sequence.
func (p *Parser) SetWorkingDirSink(f func(string)) { p.workingDirSink = f }

// IsCursorVisible reports whether DECTCEM is currently enabled.
func (p *Parser) IsCursorVisible() bool { return p.cursorVisible }

// AppCursorKeys reports whether DECCKM is currently enabled.
func (p *Parser) AppCursorKeys() bool { return p.appCursorKeys }

// Process decodes data and drives the handler, holding the shared lock for
// the whole call so a multi-byte escape sequence never interleaves with a
// concurrent RenderGrid snapshot.
func (p *Parser) Process(data []byte) {
	p.locker.Lock()
	defer p.locker.Unlock()

	for _, b := range data {
		p.processByte(b)
	}
}

func (p *Parser) processByte(b byte) {
	switch p.state {
	case stateGround:
		p.processGround(b)
	case stateEscape:
		p.processEscape(b)
	case stateCSI:
		p.processCSI(b)
	case stateOSC:
		p.processOSC(b)
	case stateCharset:
		p.state = stateGround
	case stateHash:
		p.state = stateGround
	}
}

func (p *Parser) processGround(b byte) {
	if p.utf8Remaining > 0 {
		if b&0xC0 == 0x80 {
			p.utf8Buf = append(p.utf8Buf, b)
			p.utf8Remaining--
			if p.utf8Remaining == 0 {
				p.handler.Input(decodeUTF8(p.utf8Buf))
				p.utf8Buf = nil
			}
		} else {
			p.utf8Buf = nil
			p.utf8Remaining = 0
			p.processGround(b)
		}
		return
	}

	switch b {
	case 0x1b:
		p.state = stateEscape
	case 0x07:
		p.handler.Bell()
	case 0x08:
		p.handler.Backspace()
	case 0x09:
		p.handler.PutTab(1)
	case 0x0a, 0x0b, 0x0c:
		p.handler.Linefeed()
	case 0x0d:
		p.handler.CarriageReturn()
	default:
		switch {
		case b >= 0x20 && b < 0x7f:
			p.handler.Input(rune(b))
		case b >= 0xC0 && b < 0xE0:
			p.utf8Buf = []byte{b}
			p.utf8Remaining = 1
		case b >= 0xE0 && b < 0xF0:
			p.utf8Buf = []byte{b}
			p.utf8Remaining = 2
		case b >= 0xF0 && b < 0xF8:
			p.utf8Buf = []byte{b}
			p.utf8Remaining = 3
		}
	}
}

func decodeUTF8(buf []byte) rune {
	if len(buf) == 0 {
		return 0xFFFD
	}
	switch len(buf) {
	case 1:
		return rune(buf[0])
	case 2:
		if buf[0]&0xE0 == 0xC0 {
			return rune(buf[0]&0x1F)<<6 | rune(buf[1]&0x3F)
		}
	case 3:
		if buf[0]&0xF0 == 0xE0 {
			return rune(buf[0]&0x0F)<<12 | rune(buf[1]&0x3F)<<6 | rune(buf[2]&0x3F)
		}
	case 4:
		if buf[0]&0xF8 == 0xF0 {
			return rune(buf[0]&0x07)<<18 | rune(buf[1]&0x3F)<<12 | rune(buf[2]&0x3F)<<6 | rune(buf[3]&0x3F)
		}
	}
	return 0xFFFD
}

func (p *Parser) processEscape(b byte) {
	switch b {
	case '[':
		p.state = stateCSI
		p.csiParams = ""
	case ']':
		p.state = stateOSC
		p.oscParams = ""
	case '7':
		p.handler.SaveCursorPosition()
		p.state = stateGround
	case '8':
		p.handler.RestoreCursorPosition()
		p.state = stateGround
	case 'c':
		p.handler.ResetState()
		p.state = stateGround
	case 'D':
		p.handler.Linefeed()
		p.state = stateGround
	case 'M':
		p.handler.ReverseIndex()
		p.state = stateGround
	case 'E':
		p.handler.Newline()
		p.state = stateGround
	case '(', ')', '*', '+':
		p.state = stateCharset
	case '=':
		p.handler.SetKeypadApplicationMode()
		p.state = stateGround
	case '>':
		p.handler.UnsetKeypadApplicationMode()
		p.state = stateGround
	case '#':
		p.state = stateHash
	default:
		p.state = stateGround
	}
}

func (p *Parser) processCSI(b byte) {
	switch {
	case b >= 0x30 && b <= 0x3f:
		p.csiParams += string(b)
	case b >= 0x20 && b <= 0x2f:
		p.csiParams += string(b)
	case b >= 0x40 && b <= 0x7e:
		p.executeCSI(b)
		p.state = stateGround
	default:
		p.state = stateGround
	}
}

func (p *Parser) executeCSI(final byte) {
	p.privateMode = strings.HasPrefix(p.csiParams, "?")
	params := p.parseParams(p.csiParams)

	clampLine := func(n int) grid.Line {
		lines := p.info.Lines()
		if n < 0 {
			n = 0
		}
		if n >= lines {
			n = lines - 1
		}
		return grid.Line(n)
	}
	clampCol := func(n int) grid.Column {
		cols := p.info.Cols()
		if n < 0 {
			n = 0
		}
		if n >= cols {
			n = cols - 1
		}
		return grid.Column(n)
	}

	switch final {
	case 'A':
		p.handler.MoveUp(p.getParam(params, 0, 1))
	case 'B':
		p.handler.MoveDown(p.getParam(params, 0, 1))
	case 'C':
		p.handler.MoveForward(p.getParam(params, 0, 1))
	case 'D':
		p.handler.MoveBackward(p.getParam(params, 0, 1))
	case 'E':
		p.handler.CarriageReturn()
		p.handler.MoveDown(p.getParam(params, 0, 1))
	case 'F':
		p.handler.CarriageReturn()
		p.handler.MoveUp(p.getParam(params, 0, 1))
	case 'G':
		p.handler.GotoCol(clampCol(p.getParam(params, 0, 1) - 1))
	case 'H', 'f':
		row := p.getParam(params, 0, 1)
		col := p.getParam(params, 1, 1)
		p.handler.Goto(clampLine(row-1), clampCol(col-1))
	case 'J':
		switch p.getParam(params, 0, 0) {
		case 0:
			p.handler.ClearScreen(term.ClearBelow)
		case 1:
			p.handler.ClearScreen(term.ClearAbove)
		case 2, 3:
			p.handler.ClearScreen(term.ClearAll)
		}
	case 'K':
		switch p.getParam(params, 0, 0) {
		case 0:
			p.handler.ClearLine(term.LineClearRight)
		case 1:
			p.handler.ClearLine(term.LineClearLeft)
		case 2:
			p.handler.ClearLine(term.LineClearAll)
		}
	case 'L':
		p.handler.InsertBlankLines(p.getParam(params, 0, 1))
	case 'M':
		p.handler.DeleteLines(p.getParam(params, 0, 1))
	case 'P':
		p.handler.DeleteChars(p.getParam(params, 0, 1))
	case '@':
		p.handler.InsertBlank(p.getParam(params, 0, 1))
	case 'S':
		p.handler.ScrollUp(p.getParam(params, 0, 1))
	case 'T':
		p.handler.ScrollDown(p.getParam(params, 0, 1))
	case 'X':
		p.handler.EraseChars(p.getParam(params, 0, 1))
	case 'd':
		p.handler.GotoLine(clampLine(p.getParam(params, 0, 1) - 1))
	case 'b':
		p.handler.RepeatChar(p.getParam(params, 0, 1))
	case 'm':
		p.executeSGR(params)
	case 'h':
		p.setMode(params, true)
	case 'l':
		p.setMode(params, false)
	case 'r':
		top := p.getParam(params, 0, 1)
		bottom := p.getParam(params, 1, p.info.Lines())
		p.handler.SetScrollingRegion(clampLine(top-1), clampLine(bottom-1).Add(1))
	case 's':
		p.handler.SaveCursorPosition()
	case 'u':
		p.handler.RestoreCursorPosition()
	case 'n':
		p.handleDSR(params)
	case 'c', 't', 'q':
		// device attributes / window manipulation / cursor style: ignored
	}
}

func (p *Parser) executeSGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}

	i := 0
	for i < len(params) {
		v := params[i]
		switch {
		case v == 0:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrReset})
		case v == 1:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrBold})
		case v == 3:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrItalic})
		case v == 4:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrUnderscore})
		case v == 7:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrReverse})
		case v == 22:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrCancelBold})
		case v == 23:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrCancelItalic})
		case v == 24:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrCancelUnderscore})
		case v == 27:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrCancelReverse})
		case v >= 30 && v <= 37:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrForeground, Index: uint8(v - 30)})
		case v == 38:
			if i+1 < len(params) {
				if params[i+1] == 5 && i+2 < len(params) {
					p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrForeground, Index: uint8(params[i+2])})
					i += 2
				} else if params[i+1] == 2 && i+4 < len(params) {
					rgb := grid.Rgb{R: uint8(params[i+2]), G: uint8(params[i+3]), B: uint8(params[i+4])}
					p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrForegroundSpec, Rgb: rgb})
					i += 4
				}
			}
		case v == 39:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrDefaultForeground})
		case v >= 40 && v <= 47:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrBackground, Index: uint8(v - 40)})
		case v == 48:
			if i+1 < len(params) {
				if params[i+1] == 5 && i+2 < len(params) {
					p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrBackground, Index: uint8(params[i+2])})
					i += 2
				} else if params[i+1] == 2 && i+4 < len(params) {
					rgb := grid.Rgb{R: uint8(params[i+2]), G: uint8(params[i+3]), B: uint8(params[i+4])}
					p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrBackgroundSpec, Rgb: rgb})
					i += 4
				}
			}
		case v == 49:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrDefaultBackground})
		case v >= 90 && v <= 97:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrForeground, Index: uint8(v - 90 + 8)})
		case v >= 100 && v <= 107:
			p.handler.TerminalAttribute(term.Attribute{Kind: term.AttrBackground, Index: uint8(v - 100 + 8)})
		}
		i++
	}
}

func (p *Parser) setMode(params []int, set bool) {
	if !p.privateMode {
		return
	}
	for _, v := range params {
		switch v {
		case 1:
			p.appCursorKeys = set
			if set {
				p.handler.SetMode(term.ModeCursorKeysArg)
			} else {
				p.handler.UnsetMode(term.ModeCursorKeysArg)
			}
		case 25:
			p.cursorVisible = set
			if set {
				p.handler.SetMode(term.ModeShowCursorArg)
			} else {
				p.handler.UnsetMode(term.ModeShowCursorArg)
			}
		case 47, 1047:
			if set {
				p.handler.SetMode(term.ModeSwapScreenAndSetRestoreCursor)
			} else {
				p.handler.UnsetMode(term.ModeSwapScreenAndSetRestoreCursor)
			}
		case 1049:
			if set {
				p.handler.SaveCursorPosition()
				p.handler.SetMode(term.ModeSwapScreenAndSetRestoreCursor)
			} else {
				p.handler.UnsetMode(term.ModeSwapScreenAndSetRestoreCursor)
				p.handler.RestoreCursorPosition()
			}
		default:
			if set {
				p.handler.SetMode(term.ModeUnknown)
			} else {
				p.handler.UnsetMode(term.ModeUnknown)
			}
		}
	}
}

func (p *Parser) processOSC(b byte) {
	if b == 0x07 || b == 0x1b {
		p.handleOSC(p.oscParams)
		p.oscParams = ""
		p.state = stateGround
	} else {
		p.oscParams += string(b)
	}
}

func (p *Parser) handleOSC(params string) {
	if strings.HasPrefix(params, "7;") {
		path := parseOSC7Path(strings.TrimPrefix(params, "7;"))
		if path != "" && p.workingDirSink != nil {
			p.workingDirSink(path)
		}
	}
}

func parseOSC7Path(value string) string {
	if strings.HasPrefix(value, "file://") {
		parsed, err := url.Parse(value)
		if err != nil || parsed.Path == "" {
			return ""
		}
		path, err := url.PathUnescape(parsed.Path)
		if err != nil {
			return ""
		}
		return path
	}
	if strings.HasPrefix(value, "/") {
		return value
	}
	return ""
}

func (p *Parser) parseParams(s string) []int {
	s = strings.TrimPrefix(s, "?")
	s = strings.TrimPrefix(s, ">")
	s = strings.TrimPrefix(s, "!")

	if s == "" {
		return nil
	}

	parts := strings.Split(s, ";")
	params := make([]int, len(parts))
	for i, part := range parts {
		if idx := strings.Index(part, ":"); idx >= 0 {
			part = part[:idx]
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			params[i] = 0
		} else {
			params[i] = n
		}
	}
	return params
}

func (p *Parser) getParam(params []int, index, defaultVal int) int {
	if index < len(params) && params[index] > 0 {
		return params[index]
	}
	return defaultVal
}

func (p *Parser) handleDSR(params []int) {
	if p.responseWriter == nil {
		return
	}
	switch p.getParam(params, 0, 0) {
	case 5:
		p.responseWriter([]byte("\x1b[0n"))
	case 6:
		line, col := p.info.CursorPos()
		p.responseWriter([]byte(fmt.Sprintf("\x1b[%d;%dR", line+1, col+1)))
	}
}
