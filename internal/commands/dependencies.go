package commands

import (
	"io"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/diogo/wikichat/internal/api"
	"github.com/diogo/wikichat/internal/server"
	"github.com/diogo/wikichat/internal/session"
	"github.com/diogo/wikichat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctrl *session.Controller, opts tui.ChatOptions) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// Exchanger overrides the HTTP client built from the configuration.
	Exchanger api.Exchanger

	// Answerer overrides the OpenAI-backed answer service of `serve`.
	Answerer server.Answerer

	// TUI is the terminal user interface.
	TUI TUIInterface

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinPiped reports whether input is being piped in
	StdinPiped func() bool
	// Interactive reports whether stderr is a terminal (enables the spinner)
	Interactive func() bool
	// TerminalWidth returns the width of stdout, or 0 when unknown
	TerminalWidth func() int
	// CopyToClipboard copies text to the system clipboard
	CopyToClipboard func(text string) error
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctrl *session.Controller, opts tui.ChatOptions) error {
	return tui.RunChat(ctrl, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:    &DefaultTUI{},
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		StdinPiped: func() bool {
			stat, err := os.Stdin.Stat()
			return err == nil && (stat.Mode()&os.ModeCharDevice) == 0
		},
		Interactive: func() bool {
			return term.IsTerminal(int(os.Stderr.Fd()))
		},
		TerminalWidth: func() int {
			width, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil {
				return 0
			}
			return width
		},
		CopyToClipboard: clipboard.WriteAll,
	}
}

// withDefaults fills unset fields so tests only need to supply what they use
func (d *Dependencies) withDefaults() *Dependencies {
	def := NewDependencies()
	if d == nil {
		return def
	}
	out := *d
	if out.TUI == nil {
		out.TUI = def.TUI
	}
	if out.Stdin == nil {
		out.Stdin = def.Stdin
	}
	if out.Stdout == nil {
		out.Stdout = def.Stdout
	}
	if out.Stderr == nil {
		out.Stderr = def.Stderr
	}
	if out.StdinPiped == nil {
		out.StdinPiped = def.StdinPiped
	}
	if out.Interactive == nil {
		out.Interactive = def.Interactive
	}
	if out.TerminalWidth == nil {
		out.TerminalWidth = def.TerminalWidth
	}
	if out.CopyToClipboard == nil {
		out.CopyToClipboard = def.CopyToClipboard
	}
	return &out
}
