// Package ptyio owns the pseudo-terminal process backing a terminal
// session: spawning the configured login shell with creack/pty and
// forwarding reads, writes, and resizes to it. It implements term.PTY.
package ptyio

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"github.com/corvidterm/corvid/config"
)

// Session wraps a running shell process and its pseudo-terminal.
type Session struct {
	cmd *exec.Cmd
	pty *os.File

	mu sync.Mutex

	exitedMu sync.Mutex
	exited   bool
}

// NewSession launches the shell configured in cfg (or the system default)
// as an interactive (-i, not login) shell attached to a new PTY of the
// given size.
func NewSession(cfg *config.Config, cols, rows uint16) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	shellPath := findShell(cfg)

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("ptyio: lookup current user: %w", err)
	}

	shellBase := shellPath
	if idx := strings.LastIndex(shellPath, "/"); idx >= 0 {
		shellBase = shellPath[idx+1:]
	}

	cmd := buildShellCommand(shellPath, shellBase, cfg.Shell.SourceRC)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Env = buildEnv(currentUser, shellPath, cfg)
	cmd.Dir = currentUser.HomeDir

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: cols, Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("ptyio: start shell: %w", err)
	}

	s := &Session{cmd: cmd, pty: ptmx}

	go func() {
		cmd.Wait()
		s.exitedMu.Lock()
		s.exited = true
		s.exitedMu.Unlock()
	}()

	return s, nil
}

func buildShellCommand(shellPath, shellBase string, sourceRC bool) *exec.Cmd {
	if sourceRC {
		switch shellBase {
		case "bash", "zsh", "fish":
			return exec.Command(shellPath, "-i")
		default:
			return exec.Command(shellPath, "-i")
		}
	}
	switch shellBase {
	case "bash":
		return exec.Command(shellPath, "--noprofile", "--norc", "-i")
	case "zsh":
		return exec.Command(shellPath, "--no-rcs", "-i")
	case "fish":
		return exec.Command(shellPath, "--no-config", "-i")
	default:
		return exec.Command(shellPath, "-i")
	}
}

func buildEnv(u *user.User, shellPath string, cfg *config.Config) []string {
	xdgRuntimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if xdgRuntimeDir == "" {
		xdgRuntimeDir = "/run/user/" + u.Uid
	}

	env := []string{
		"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin:" + os.Getenv("PATH"),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
		"CORVID_TERMINAL=1",
		"HOME=" + u.HomeDir,
		"USER=" + u.Username,
		"SHELL=" + shellPath,
		"LANG=en_US.UTF-8",
		"LC_ALL=en_US.UTF-8",
		"XDG_RUNTIME_DIR=" + xdgRuntimeDir,
	}

	if display := os.Getenv("DISPLAY"); display != "" {
		env = append(env, "DISPLAY="+display)
	}
	if wayland := os.Getenv("WAYLAND_DISPLAY"); wayland != "" {
		env = append(env, "WAYLAND_DISPLAY="+wayland, "XDG_SESSION_TYPE=wayland")
	}

	for k, v := range cfg.Shell.AdditionalEnv {
		env = append(env, k+"="+v)
	}

	return env
}

func findShell(cfg *config.Config) string {
	if cfg.Shell.Path != "" {
		if _, err := os.Stat(cfg.Shell.Path); err == nil {
			return cfg.Shell.Path
		}
	}

	if currentUser, err := user.Current(); err == nil {
		if shell := passwdShell(currentUser.Username); shell != "" {
			if _, err := os.Stat(shell); err == nil {
				return shell
			}
		}
	}

	for _, shell := range []string{"/bin/bash", "/usr/bin/bash", "/bin/zsh", "/usr/bin/zsh", "/bin/sh"} {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

func passwdShell(username string) string {
	data, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 7 && fields[0] == username {
			return fields[6]
		}
	}
	return ""
}

// Read reads shell output from the PTY.
func (s *Session) Read(buf []byte) (int, error) {
	return s.pty.Read(buf)
}

// Write sends keyboard input to the shell.
func (s *Session) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pty.Write(data)
}

// Resize implements term.PTY: it forwards the new cell geometry and the
// pixel dimensions to the kernel PTY via TIOCSWINSZ.
func (s *Session) Resize(lines, cols, widthPx, heightPx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pty.Setsize(s.pty, &pty.Winsize{
		Rows: uint16(lines),
		Cols: uint16(cols),
		X:    uint16(widthPx),
		Y:    uint16(heightPx),
	})
}

// HasExited reports whether the shell process has terminated.
func (s *Session) HasExited() bool {
	s.exitedMu.Lock()
	defer s.exitedMu.Unlock()
	return s.exited
}

// Close terminates the shell and releases the PTY.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	return s.pty.Close()
}

// Reader exposes the PTY as an io.Reader for the session's read loop.
func (s *Session) Reader() io.Reader { return s.pty }

// Writer exposes the PTY as an io.Writer.
func (s *Session) Writer() io.Writer { return s.pty }
