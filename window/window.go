// Package window owns the OS window and OpenGL context the renderer draws
// into, and the GLFW event loop driving input callbacks.
package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW event handling must run on the main thread.
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Width  int
	Height int
	Title  string
}

// DefaultConfig returns the default window configuration.
func DefaultConfig() Config {
	return Config{Width: 900, Height: 600, Title: "corvid"}
}

// Window wraps a GLFW window with an OpenGL context.
type Window struct {
	glfw *glfw.Window
}

// New creates a GLFW window with a 4.1 core-profile OpenGL context.
func New(cfg Config) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("window: init glfw: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.True)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window: create window: %w", err)
	}
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("window: init gl: %w", err)
	}

	glfw.SwapInterval(1)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	return &Window{glfw: win}, nil
}

// GLFW returns the underlying GLFW window, for registering input callbacks.
func (w *Window) GLFW() *glfw.Window { return w.glfw }

// GetFramebufferSize returns the current framebuffer size in pixels.
func (w *Window) GetFramebufferSize() (int, int) { return w.glfw.GetFramebufferSize() }

// ShouldClose reports whether the user requested the window close.
func (w *Window) ShouldClose() bool { return w.glfw.ShouldClose() }

// SetShouldClose requests the window close on the next loop iteration.
func (w *Window) SetShouldClose(v bool) { w.glfw.SetShouldClose(v) }

// SwapBuffers presents the back buffer.
func (w *Window) SwapBuffers() { w.glfw.SwapBuffers() }

// SetViewport resizes the GL viewport to match a new framebuffer size.
func (w *Window) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Focused reports whether the window currently has input focus.
func (w *Window) Focused() bool { return w.glfw.GetAttrib(glfw.Focused) == glfw.True }

// Destroy releases the window and terminates GLFW.
func (w *Window) Destroy() {
	w.glfw.Destroy()
	glfw.Terminate()
}

// PollEvents processes pending window/input events.
func PollEvents() { glfw.PollEvents() }
