// Command corvid wires the terminal core (term.Term), its ANSI byte parser
// (ansi.Parser), the PTY session (ptyio.Session), and the GL renderer
// (render.Renderer) into a running terminal emulator: a PTY reader
// goroutine feeds the parser, and the main goroutine runs GLFW's event
// loop and the renderer's frame tick. GLFW and GL are only ever touched
// from the main goroutine; the reader goroutine signals exit through an
// atomic flag instead of calling into GLFW.
package main

import (
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/corvidterm/corvid/ansi"
	"github.com/corvidterm/corvid/config"
	"github.com/corvidterm/corvid/keyinput"
	"github.com/corvidterm/corvid/ptyio"
	"github.com/corvidterm/corvid/render"
	"github.com/corvidterm/corvid/term"
	"github.com/corvidterm/corvid/window"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("corvid: load config: %v", err)
	}
	palette := config.ResolvePalette(cfg.Palette)

	winCfg := window.DefaultConfig()
	if cfg.Window.Width > 0 {
		winCfg.Width = cfg.Window.Width
	}
	if cfg.Window.Height > 0 {
		winCfg.Height = cfg.Window.Height
	}

	win, err := window.New(winCfg)
	if err != nil {
		log.Fatalf("corvid: create window: %v", err)
	}
	defer win.Destroy()

	renderer, err := render.NewRenderer(cfg.Font.Path, cfg.Font.Size)
	if err != nil {
		log.Fatalf("corvid: create renderer: %v", err)
	}
	defer renderer.Destroy()

	cellW, cellH := renderer.CellDimensions()
	width, height := win.GetFramebufferSize()

	initialSize := term.SizeInfo{
		WidthPx: float32(width), HeightPx: float32(height),
		CellWidth: cellW, CellHeight: cellH,
	}

	session, err := ptyio.NewSession(cfg, uint16(initialSize.Cols()), uint16(initialSize.Lines()))
	if err != nil {
		log.Fatalf("corvid: start shell: %v", err)
	}
	defer session.Close()

	t := term.NewTerm(term.Options{
		WidthPx: float32(width), HeightPx: float32(height),
		CellWidth: cellW, CellHeight: cellH,
		Fg: palette.Fg, Bg: palette.Bg, Palette: palette.Colors,
		PTY: session,
	})

	parser := ansi.NewParser(t, t, t)
	parser.SetResponseWriter(func(b []byte) { session.Write(b) })
	parser.SetWorkingDirSink(t.SetWorkingDir)

	var ptyClosed atomic.Bool
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := session.Read(buf)
			if n > 0 {
				parser.Process(buf[:n])
			}
			if err != nil {
				if err != io.EOF {
					log.Printf("corvid: pty read: %v", err)
				}
				ptyClosed.Store(true)
				return
			}
		}
	}()

	var currentMods glfw.ModifierKey
	win.GLFW().SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		currentMods = mods
		if action == glfw.Release {
			return
		}
		data := keyinput.Translate(key, mods, parser.AppCursorKeys())
		if data != nil {
			session.Write(data)
		}
	})

	win.GLFW().SetCharCallback(func(w *glfw.Window, char rune) {
		session.Write(keyinput.TranslateChar(char, currentMods))
	})

	win.GLFW().SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		win.SetViewport(width, height)
		t.Lock()
		t.Resize(float32(width), float32(height))
		t.Unlock()
	})

	for !win.ShouldClose() {
		if ptyClosed.Load() {
			win.SetShouldClose(true)
			break
		}

		width, height := win.GetFramebufferSize()
		win.SetViewport(width, height)

		func() {
			rg := t.AcquireRenderGrid()
			defer rg.Release()
			renderer.DrawFrame(rg, width, height, win.Focused())
		}()

		win.SwapBuffers()
		window.PollEvents()
		time.Sleep(16 * time.Millisecond)
	}
}
