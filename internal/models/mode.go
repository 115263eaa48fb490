package models

import "fmt"

// Mode selects how the backend answers a message. It is sent with every
// request and interpreted entirely by the backend.
type Mode string

const (
	ModeFast     Mode = "fast"
	ModeThinking Mode = "thinking"
)

// DefaultMode is the mode of a fresh session
const DefaultMode = ModeFast

// AllModes returns the available modes in toggle order
func AllModes() []Mode {
	return []Mode{ModeFast, ModeThinking}
}

// ParseMode returns the Mode named by s
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFast:
		return ModeFast, nil
	case ModeThinking:
		return ModeThinking, nil
	default:
		return "", fmt.Errorf("invalid mode %q (want fast or thinking)", s)
	}
}

// Valid reports whether m is one of the known modes
func (m Mode) Valid() bool {
	return m == ModeFast || m == ModeThinking
}

// Toggle returns the other mode. Anything that is not thinking toggles to thinking.
func (m Mode) Toggle() Mode {
	if m == ModeThinking {
		return ModeFast
	}
	return ModeThinking
}

// Label returns the display label of the mode
func (m Mode) Label() string {
	switch m {
	case ModeThinking:
		return "Thinking"
	default:
		return "Fast"
	}
}

func (m Mode) String() string {
	return string(m)
}
