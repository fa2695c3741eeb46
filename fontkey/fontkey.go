// Package fontkey implements the small value-type vocabulary the
// rasterization layer uses to name and cache fonts and glyphs: FontDesc,
// Size, the process-wide FontKey allocator, and GlyphKey. None of this
// package touches a font file — render's glyph atlas is the consumer.
package fontkey

import "sync/atomic"

// FontDesc identifies a font by family name and style, independent of
// size. It is a plain comparable value so it can key a map.
type FontDesc struct {
	Name  string
	Style string
}

// Size is a point size stored doubled as an integer, so that whole and
// half point sizes (e.g. 10.5pt) compare and hash exactly; finer fractions
// are truncated to the half point below.
type Size struct {
	doubled int32
}

// NewSize builds a Size from a point value; 12.0 becomes an internal value
// of 24.
func NewSize(pts float32) Size {
	return Size{doubled: int32(pts * 2)}
}

// AsPoints returns the size as a point value.
func (s Size) AsPoints() float32 {
	return float32(s.doubled) / 2
}

// FontKey is an opaque, globally unique token identifying one (FontDesc,
// Size) pair that the rasterizer has loaded. Tokens are issued by
// NextFontKey and never recycled, so a stale FontKey is simply never
// reused rather than needing to be invalidated.
type FontKey uint32

var fontKeyCounter uint32

// NextFontKey issues the next FontKey from the process-wide monotonic
// counter via atomic fetch-and-add. The counter starts at zero and is
// assumed not to overflow uint32 within a session's lifetime.
func NextFontKey() FontKey {
	return FontKey(atomic.AddUint32(&fontKeyCounter, 1) - 1)
}

// GlyphKey names one rasterized glyph: a character in a specific font at a
// specific size. It is the cache key the render package's glyph atlas is
// built around.
type GlyphKey struct {
	C       rune
	FontKey FontKey
	Size    Size
}
