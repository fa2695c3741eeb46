package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// cursorOutlineSize is the fixed square resolution the hollow-box SVG is
// rasterized to; it is stretched to the current cell size at draw time.
const cursorOutlineSize = 64

// hollow box outline, a thin rect stroke inset from the edges.
const cursorOutlineSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64">
  <rect x="2" y="2" width="60" height="60" fill="none" stroke="white" stroke-width="4"/>
</svg>`

// cursorOutline rasterizes the hollow-box cursor shape once via
// oksvg/rasterx and draws it as a textured quad when the window is
// unfocused — term.RenderGrid's fg/bg invert is the focused-state cursor;
// this outline is the unfocused indicator layered on top.
type cursorOutline struct {
	texture uint32
}

func newCursorOutline() (*cursorOutline, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(cursorOutlineSVG))
	if err != nil {
		return nil, fmt.Errorf("render: parse cursor outline svg: %w", err)
	}
	icon.SetTarget(0, 0, cursorOutlineSize, cursorOutlineSize)

	rgba := image.NewRGBA(image.Rect(0, 0, cursorOutlineSize, cursorOutlineSize))
	scanner := rasterx.NewScannerGV(cursorOutlineSize, cursorOutlineSize, rgba, rgba.Bounds())
	rasterizer := rasterx.NewDasher(cursorOutlineSize, cursorOutlineSize, scanner)
	icon.Draw(rasterizer, 1.0)

	alpha := make([]byte, cursorOutlineSize*cursorOutlineSize)
	for i := 0; i < cursorOutlineSize*cursorOutlineSize; i++ {
		alpha[i] = rgba.Pix[i*4+3]
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, cursorOutlineSize, cursorOutlineSize, 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(alpha))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return &cursorOutline{texture: tex}, nil
}

// draw stretches the rasterized outline over one cell using r's text shader
// and buffers — the outline is just another alpha-mask texture, so it reuses
// the glyph-drawing pipeline rather than a second shader program.
func (c *cursorOutline) draw(r *Renderer, x, y, w, h float32, clr [4]float32, proj [16]float32) {
	vertices := []float32{
		x, y, 0, 0,
		x + w, y, 1, 0,
		x + w, y + h, 1, 1,
		x, y, 0, 0,
		x + w, y + h, 1, 1,
		x, y + h, 0, 1,
	}
	gl.UseProgram(r.fontProgram)
	gl.UniformMatrix4fv(r.texProjLoc, 1, false, &proj[0])
	gl.Uniform4fv(r.texColorLoc, 1, &clr[0])
	gl.Uniform1i(r.texLoc, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, c.texture)
	gl.BindVertexArray(r.fontVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.fontVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func (c *cursorOutline) destroy() {
	gl.DeleteTextures(1, &c.texture)
}
