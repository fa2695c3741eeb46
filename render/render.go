// Package render is the GPU rendering frontend: it owns the glyph atlas,
// the GL shader programs, and the per-frame draw calls that turn a
// term.RenderGrid snapshot into pixels.
package render

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/corvidterm/corvid/fontkey"
	"github.com/corvidterm/corvid/grid"
	"github.com/corvidterm/corvid/term"
)

// Glyph is one character's location within the font atlas texture.
type Glyph struct {
	X, Y          float32 // normalized atlas offset
	Width, Height float32 // normalized atlas size
	PixelWidth    int
	PixelHeight   int
}

// Theme supplies the colors drawn outside the grid proper (the window
// background behind a short grid, in case cell metrics don't evenly divide
// the framebuffer).
type Theme struct {
	Background [4]float32
}

// DefaultTheme is a near-black dark background.
func DefaultTheme() Theme {
	return Theme{Background: [4]float32{0.043, 0.043, 0.043, 1.0}}
}

const atlasSize = 1024

// Renderer draws RenderGrid snapshots with OpenGL. One Renderer owns one GL
// context's worth of shader programs, buffers, and the glyph atlas texture;
// it is not safe for concurrent use (the renderer thread is the only
// caller).
type Renderer struct {
	theme      Theme
	cellWidth  float32
	cellHeight float32
	fontSize   float32
	fontPath   string

	fontDesc fontkey.FontDesc
	fontKey  fontkey.FontKey
	sizeKey  fontkey.Size

	glyphs    map[fontkey.GlyphKey]Glyph
	fontAtlas uint32

	quadVAO, quadVBO     uint32
	program              uint32
	colorLoc, projLoc    int32
	fontVAO, fontVBO     uint32
	fontProgram          uint32
	texColorLoc          int32
	texProjLoc           int32
	texLoc               int32

	cursorOutline *cursorOutline
}

// NewRenderer builds a Renderer: it compiles the shader programs, rasterizes
// a glyph atlas from the font at fontPath (falling back to a system
// monospace font if fontPath is empty or does not exist), and prepares the
// cursor outline mask. It requires a current OpenGL context (the caller
// makes the window's context current first).
func NewRenderer(fontPath string, fontSize float32) (*Renderer, error) {
	if fontSize <= 0 {
		fontSize = 15.0
	}
	r := &Renderer{
		theme:    DefaultTheme(),
		fontSize: fontSize,
		fontPath: fontPath,
		glyphs:   make(map[fontkey.GlyphKey]Glyph),
	}

	if err := r.initGL(); err != nil {
		return nil, err
	}
	if err := r.loadFont(); err != nil {
		return nil, err
	}
	outline, err := newCursorOutline()
	if err != nil {
		return nil, err
	}
	r.cursorOutline = outline

	return r, nil
}

// CellDimensions returns the pixel size of one cell, derived from the loaded
// font's metrics. The caller feeds this into term.Options so Term can derive
// its own line/column counts.
func (r *Renderer) CellDimensions() (float32, float32) {
	return r.cellWidth, r.cellHeight
}

func resolveFontPath(configured string) (string, error) {
	candidates := []string{configured}
	candidates = append(candidates,
		"/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationMono-Regular.ttf",
		"/usr/share/fonts/TTF/DejaVuSansMono.ttf",
		"/System/Library/Fonts/Menlo.ttc",
	)
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("render: no usable monospace font found (tried %v)", candidates)
}

// loadFont parses the TTF at r.fontPath (or a fallback system font) and
// rasterizes the printable ASCII range into an alpha-only atlas texture.
// The font file is read at runtime; no font binaries are embedded in the
// binary.
func (r *Renderer) loadFont() error {
	path, err := resolveFontPath(r.fontPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("render: read font %s: %w", path, err)
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("render: parse font: %w", err)
	}

	var nameBuf sfnt.Buffer
	family, err := parsed.Name(&nameBuf, sfnt.NameIDFamily)
	if err != nil || family == "" {
		family = filepath.Base(path)
	}
	style, err := parsed.Name(&nameBuf, sfnt.NameIDSubfamily)
	if err != nil || style == "" {
		style = "Regular"
	}
	r.fontDesc = fontkey.FontDesc{Name: family, Style: style}
	r.fontKey = fontkey.NextFontKey()
	r.sizeKey = fontkey.NewSize(r.fontSize)
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(r.fontSize),
		DPI:     96,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("render: create font face: %w", err)
	}
	defer face.Close()

	metrics := face.Metrics()
	r.cellHeight = float32((metrics.Ascent + metrics.Descent).Ceil())
	advance, _ := face.GlyphAdvance('M')
	r.cellWidth = float32(advance.Ceil())

	atlas := image.NewRGBA(image.Rect(0, 0, atlasSize, atlasSize))
	draw.Draw(atlas, atlas.Bounds(), image.Transparent, image.Point{}, draw.Src)
	drawer := &font.Drawer{Dst: atlas, Src: image.White, Face: face}

	charWidth := int(r.cellWidth)
	charHeight := int(r.cellHeight)
	x, y := 0, metrics.Ascent.Ceil()
	glyphs := make(map[fontkey.GlyphKey]Glyph, 96)

	for c := rune(0x20); c <= 0x7e; c++ {
		if x+charWidth > atlasSize {
			x = 0
			y += charHeight
		}
		if y+charHeight > atlasSize {
			break
		}
		if _, ok := face.GlyphAdvance(c); !ok {
			continue
		}
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(string(c))
		glyphs[r.glyphKey(c)] = Glyph{
			X: float32(x) / float32(atlasSize), Y: float32(y-metrics.Ascent.Ceil()) / float32(atlasSize),
			Width: float32(charWidth) / float32(atlasSize), Height: float32(charHeight) / float32(atlasSize),
			PixelWidth: charWidth, PixelHeight: charHeight,
		}
		x += charWidth
	}
	r.glyphs = glyphs

	alpha := make([]byte, atlasSize*atlasSize)
	for i := 0; i < atlasSize*atlasSize; i++ {
		alpha[i] = atlas.Pix[i*4+3]
	}

	if r.fontAtlas != 0 {
		gl.DeleteTextures(1, &r.fontAtlas)
	}
	gl.GenTextures(1, &r.fontAtlas)
	gl.BindTexture(gl.TEXTURE_2D, r.fontAtlas)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, atlasSize, atlasSize, 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(alpha))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return nil
}

func (r *Renderer) initGL() error {
	vertShader := `
		#version 410 core
		layout (location = 0) in vec2 aPos;
		uniform mat4 projection;
		void main() { gl_Position = projection * vec4(aPos, 0.0, 1.0); }
	` + "\x00"
	fragShader := `
		#version 410 core
		out vec4 FragColor;
		uniform vec4 color;
		void main() { FragColor = color; }
	` + "\x00"

	var err error
	r.program, err = createProgram(vertShader, fragShader)
	if err != nil {
		return fmt.Errorf("render: quad shader: %w", err)
	}
	r.colorLoc = gl.GetUniformLocation(r.program, gl.Str("color\x00"))
	r.projLoc = gl.GetUniformLocation(r.program, gl.Str("projection\x00"))

	textVert := `
		#version 410 core
		layout (location = 0) in vec4 vertex;
		out vec2 TexCoords;
		uniform mat4 projection;
		void main() {
			gl_Position = projection * vec4(vertex.xy, 0.0, 1.0);
			TexCoords = vertex.zw;
		}
	` + "\x00"
	textFrag := `
		#version 410 core
		in vec2 TexCoords;
		out vec4 FragColor;
		uniform sampler2D text;
		uniform vec4 textColor;
		void main() {
			float alpha = texture(text, TexCoords).r;
			FragColor = vec4(textColor.rgb, textColor.a * alpha);
		}
	` + "\x00"
	r.fontProgram, err = createProgram(textVert, textFrag)
	if err != nil {
		return fmt.Errorf("render: text shader: %w", err)
	}
	r.texColorLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("textColor\x00"))
	r.texProjLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("projection\x00"))
	r.texLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("text\x00"))

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*2*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenVertexArrays(1, &r.fontVAO)
	gl.GenBuffers(1, &r.fontVBO)
	gl.BindVertexArray(r.fontVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.fontVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, 4*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return nil
}

// DrawFrame renders one RenderGrid snapshot. rg must already be acquired by
// the caller (term.Term.AcquireRenderGrid) and is released by the caller,
// not by DrawFrame — the renderer only reads it. focused selects whether an
// unfocused hollow cursor outline is drawn on top of the cell RenderGrid
// already inverted for the cursor.
func (r *Renderer) DrawFrame(rg *term.RenderGrid, width, height int, focused bool) {
	proj := orthoMatrix(0, float32(width), float32(height), 0, -1, 1)

	gl.ClearColor(r.theme.Background[0], r.theme.Background[1], r.theme.Background[2], r.theme.Background[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)

	rows := rg.NumLines()
	for row := 0; row < rows; row++ {
		line := grid.Line(row)
		cells := rg.Row(line)
		y := float32(row) * r.cellHeight
		for col, cell := range cells {
			x := float32(col) * r.cellWidth
			if y+r.cellHeight > float32(height) || x+r.cellWidth > float32(width) {
				continue
			}
			bg := rgbaOf(cell.Bg)
			if bg != r.theme.Background {
				r.drawRect(x, y, r.cellWidth, r.cellHeight, bg, proj)
			}
			if cell.C != ' ' && cell.C != 0 {
				r.drawChar(x, y+r.cellHeight, cell.C, rgbaOf(cell.Fg), proj)
			}
			if cell.Flags&grid.FlagUnderline != 0 {
				r.drawRect(x, y+r.cellHeight-1, r.cellWidth, 1, rgbaOf(cell.Fg), proj)
			}
		}
	}

	if !focused {
		cur := rg.Cursor()
		if int(cur.Line) < rows && int(cur.Col) < rg.NumCols() {
			cx := float32(cur.Col) * r.cellWidth
			cy := float32(cur.Line) * r.cellHeight
			r.cursorOutline.draw(r, cx, cy, r.cellWidth, r.cellHeight, [4]float32{1, 1, 1, 1}, proj)
		}
	}
}

func rgbaOf(c grid.Rgb) [4]float32 {
	return [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, 1.0}
}

func (r *Renderer) drawRect(x, y, w, h float32, clr [4]float32, proj [16]float32) {
	vertices := []float32{
		x, y,
		x + w, y,
		x + w, y + h,
		x, y,
		x + w, y + h,
		x, y + h,
	}
	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.projLoc, 1, false, &proj[0])
	gl.Uniform4fv(r.colorLoc, 1, &clr[0])
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// glyphKey names c's rasterization in the loaded font at the loaded size,
// using the fontkey vocabulary so a future multi-font atlas can share the
// same map.
func (r *Renderer) glyphKey(c rune) fontkey.GlyphKey {
	return fontkey.GlyphKey{C: c, FontKey: r.fontKey, Size: r.sizeKey}
}

// FontDesc identifies the font the atlas was rasterized from.
func (r *Renderer) FontDesc() fontkey.FontDesc { return r.fontDesc }

func (r *Renderer) drawChar(x, y float32, char rune, clr [4]float32, proj [16]float32) {
	glyph, ok := r.glyphs[r.glyphKey(char)]
	if !ok {
		glyph, ok = r.glyphs[r.glyphKey('?')]
		if !ok {
			return
		}
	}
	w := float32(glyph.PixelWidth)
	h := float32(glyph.PixelHeight)
	tx, ty, tw, th := glyph.X, glyph.Y, glyph.Width, glyph.Height

	vertices := []float32{
		x, y - h, tx, ty,
		x + w, y - h, tx + tw, ty,
		x + w, y, tx + tw, ty + th,
		x, y - h, tx, ty,
		x + w, y, tx + tw, ty + th,
		x, y, tx, ty + th,
	}
	gl.UseProgram(r.fontProgram)
	gl.UniformMatrix4fv(r.texProjLoc, 1, false, &proj[0])
	gl.Uniform4fv(r.texColorLoc, 1, &clr[0])
	gl.Uniform1i(r.texLoc, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.fontAtlas)
	gl.BindVertexArray(r.fontVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.fontVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// Destroy releases all GL resources owned by the renderer.
func (r *Renderer) Destroy() {
	gl.DeleteVertexArrays(1, &r.quadVAO)
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.fontVAO)
	gl.DeleteBuffers(1, &r.fontVBO)
	gl.DeleteProgram(r.program)
	gl.DeleteProgram(r.fontProgram)
	gl.DeleteTextures(1, &r.fontAtlas)
	if r.cursorOutline != nil {
		r.cursorOutline.destroy()
	}
}

func orthoMatrix(left, right, bottom, top, near, far float32) [16]float32 {
	return [16]float32{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, -2 / (far - near), 0,
		-(right + left) / (right - left), -(top + bottom) / (top - bottom), -(far + near) / (far - near), 1,
	}
}

func createProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logStr := make([]byte, logLength+1)
		gl.GetProgramInfoLog(program, logLength, nil, &logStr[0])
		return 0, fmt.Errorf("render: link program: %s", string(logStr))
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logStr := make([]byte, logLength+1)
		gl.GetShaderInfoLog(shader, logLength, nil, &logStr[0])
		return 0, fmt.Errorf("render: compile shader: %s", string(logStr))
	}
	return shader, nil
}
