package config

import "github.com/corvidterm/corvid/grid"

// Palette is the terminal's resolved color set: the 16-slot indexed palette
// plus the default foreground/background. Term consumes a [16]grid.Rgb and
// two grid.Rgb defaults, never a palette name — names resolve here, at
// configuration time.
type Palette struct {
	Colors [16]grid.Rgb
	Fg     grid.Rgb
	Bg     grid.Rgb
}

// rgb is a small literal helper for the tables below.
func rgb(r, g, b uint8) grid.Rgb { return grid.Rgb{R: r, G: g, B: b} }

var defaultPalette = [16]grid.Rgb{
	rgb(11, 15, 20),    // 0 black
	rgb(209, 105, 105), // 1 red
	rgb(127, 188, 140), // 2 green
	rgb(215, 186, 125), // 3 yellow
	rgb(136, 164, 212), // 4 blue
	rgb(197, 134, 192), // 5 magenta
	rgb(127, 197, 200), // 6 cyan
	rgb(212, 216, 222), // 7 white
	rgb(75, 82, 99),    // 8 bright black
	rgb(224, 122, 122), // 9 bright red
	rgb(154, 215, 168), // 10 bright green
	rgb(231, 201, 139), // 11 bright yellow
	rgb(165, 191, 240), // 12 bright blue
	rgb(216, 160, 212), // 13 bright magenta
	rgb(154, 215, 220), // 14 bright cyan
	rgb(241, 243, 245), // 15 bright white
}

var namedPalettes = map[string]Palette{
	"default": {
		Colors: defaultPalette,
		Fg:     rgb(212, 216, 222),
		Bg:     rgb(11, 11, 11),
	},
	"crow-black": {
		Colors: defaultPalette,
		Fg:     rgb(230, 230, 230),
		Bg:     rgb(5, 5, 5),
	},
	"catppuccin-mocha": {
		Colors: defaultPalette,
		Fg:     rgb(205, 214, 244),
		Bg:     rgb(30, 30, 46),
	},
}

// ResolvePalette looks up the named palette, falling back to "default" for
// an unknown name.
func ResolvePalette(name string) Palette {
	if p, ok := namedPalettes[name]; ok {
		return p
	}
	return namedPalettes["default"]
}
