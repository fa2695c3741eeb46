// Package keyinput translates GLFW key events into the byte sequences a
// terminal shell expects on its input stream: a UTF-8 character encoder
// plus the escape sequences arrow/function/navigation keys produce.
package keyinput

import "github.com/go-gl/glfw/v3.3/glfw"

// Translate returns the bytes to write to the PTY for a raw key press, or
// nil if the key carries no input meaning on its own (e.g. a bare
// modifier). appCursorMode selects the SS3 application form of the arrow
// keys over their normal CSI form, per DECCKM.
func Translate(key glfw.Key, mods glfw.ModifierKey, appCursorMode bool) []byte {
	ctrl := mods&glfw.ModControl != 0
	alt := mods&glfw.ModAlt != 0

	switch key {
	case glfw.KeyUp:
		return arrowSeq('A', appCursorMode)
	case glfw.KeyDown:
		return arrowSeq('B', appCursorMode)
	case glfw.KeyRight:
		return arrowSeq('C', appCursorMode)
	case glfw.KeyLeft:
		return arrowSeq('D', appCursorMode)
	case glfw.KeyHome:
		return []byte("\x1b[H")
	case glfw.KeyEnd:
		return []byte("\x1b[F")
	case glfw.KeyPageUp:
		return []byte("\x1b[5~")
	case glfw.KeyPageDown:
		return []byte("\x1b[6~")
	case glfw.KeyInsert:
		return []byte("\x1b[2~")
	case glfw.KeyDelete:
		return []byte("\x1b[3~")
	case glfw.KeyBackspace:
		return []byte{0x7f}
	case glfw.KeyEnter, glfw.KeyKPEnter:
		return []byte("\r")
	case glfw.KeyTab:
		if mods&glfw.ModShift != 0 {
			return []byte("\x1b[Z")
		}
		return []byte("\t")
	case glfw.KeyEscape:
		return []byte{0x1b}
	case glfw.KeyF1:
		return []byte("\x1bOP")
	case glfw.KeyF2:
		return []byte("\x1bOQ")
	case glfw.KeyF3:
		return []byte("\x1bOR")
	case glfw.KeyF4:
		return []byte("\x1bOS")
	case glfw.KeyF5:
		return []byte("\x1b[15~")
	case glfw.KeyF6:
		return []byte("\x1b[17~")
	case glfw.KeyF7:
		return []byte("\x1b[18~")
	case glfw.KeyF8:
		return []byte("\x1b[19~")
	case glfw.KeyF9:
		return []byte("\x1b[20~")
	case glfw.KeyF10:
		return []byte("\x1b[21~")
	case glfw.KeyF11:
		return []byte("\x1b[23~")
	case glfw.KeyF12:
		return []byte("\x1b[24~")
	case glfw.KeySpace:
		if ctrl {
			return []byte{0}
		}
	}

	if ctrl && key >= glfw.KeyA && key <= glfw.KeyZ {
		return []byte{byte(key-glfw.KeyA) + 1}
	}
	if alt && key >= glfw.KeyA && key <= glfw.KeyZ {
		letter := byte('a' + (key - glfw.KeyA))
		return []byte{0x1b, letter}
	}

	return nil
}

func arrowSeq(final byte, appCursorMode bool) []byte {
	if appCursorMode {
		return []byte{0x1b, 'O', final}
	}
	return []byte{0x1b, '[', final}
}

// TranslateChar encodes a typed character (from GLFW's character callback,
// not its key callback) as UTF-8 bytes, prefixing ESC when Alt is held.
func TranslateChar(char rune, mods glfw.ModifierKey) []byte {
	buf := make([]byte, 0, 5)
	if mods&glfw.ModAlt != 0 {
		buf = append(buf, 0x1b)
	}
	var encoded [4]byte
	n := encodeRune(encoded[:], char)
	return append(buf, encoded[:n]...)
}

func encodeRune(buf []byte, r rune) int {
	switch {
	case r < 0x80:
		buf[0] = byte(r)
		return 1
	case r < 0x800:
		buf[0] = 0xC0 | byte(r>>6)
		buf[1] = 0x80 | byte(r&0x3F)
		return 2
	case r < 0x10000:
		buf[0] = 0xE0 | byte(r>>12)
		buf[1] = 0x80 | byte((r>>6)&0x3F)
		buf[2] = 0x80 | byte(r&0x3F)
		return 3
	default:
		buf[0] = 0xF0 | byte(r>>18)
		buf[1] = 0x80 | byte((r>>12)&0x3F)
		buf[2] = 0x80 | byte((r>>6)&0x3F)
		buf[3] = 0x80 | byte(r&0x3F)
		return 4
	}
}
