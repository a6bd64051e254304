// Package tui provides the terminal board for mdboard.
package tui

// Mode represents the current UI mode.
type Mode int

const (
	ModeNormal   Mode = iota // Default navigation mode
	ModeDragging             // A card is held with the mouse
	ModeHelp                 // Help overlay mode
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeDragging:
		return "dragging"
	case ModeHelp:
		return "help"
	default:
		return "unknown"
	}
}
