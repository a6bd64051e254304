package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/mdboard/internal/domain"
)

// Colors defines the color palette for the TUI.
var Colors = struct {
	// Base colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color

	// Card colors
	TitleNormal   lipgloss.Color
	TitleSelected lipgloss.Color
	Border        lipgloss.Color
	BorderActive  lipgloss.Color

	// Priority colors
	Low      lipgloss.Color
	Medium   lipgloss.Color
	High     lipgloss.Color
	Critical lipgloss.Color
}{
	Primary:   lipgloss.Color("#6C5CE7"), // Purple
	Secondary: lipgloss.Color("#A29BFE"), // Lavender
	Muted:     lipgloss.Color("#636E72"), // Gray
	Error:     lipgloss.Color("#D63031"), // Red
	Warning:   lipgloss.Color("#FDCB6E"), // Yellow

	TitleNormal:   lipgloss.Color("#DFE6E9"), // Light gray
	TitleSelected: lipgloss.Color("#FFEAA7"), // Yellow (selected)
	Border:        lipgloss.Color("#636E72"),
	BorderActive:  lipgloss.Color("#FFEAA7"),

	Low:      lipgloss.Color("#74B9FF"), // Light blue
	Medium:   lipgloss.Color("#B2BEC3"), // Light gray
	High:     lipgloss.Color("#FDCB6E"), // Yellow
	Critical: lipgloss.Color("#D63031"), // Red
}

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	// Title bar
	Header     lipgloss.Style
	HeaderText lipgloss.Style

	// Columns
	ColumnTitle lipgloss.Style
	ColumnLine  lipgloss.Style
	ColumnCount lipgloss.Style
	ColumnFull  lipgloss.Style
	Empty       lipgloss.Style

	// Cards
	Card          lipgloss.Style
	CardSelected  lipgloss.Style
	CardDragging  lipgloss.Style
	CardTitle     lipgloss.Style
	CardTitleSel  lipgloss.Style
	CardMeta      lipgloss.Style
	CardAssignee  lipgloss.Style
	CardLabel     lipgloss.Style
	CardPlacehold lipgloss.Style

	// Footer
	Footer   lipgloss.Style
	ErrorMsg lipgloss.Style
}

// DefaultStyles returns the default styles for the TUI.
func DefaultStyles() Styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Colors.Border).
		Padding(0, 1)

	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary),

		HeaderText: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		ColumnTitle: lipgloss.NewStyle().
			Bold(true),

		ColumnLine: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		ColumnCount: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		ColumnFull: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),

		Empty: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Italic(true),

		Card: card,

		CardSelected: card.
			BorderForeground(Colors.BorderActive),

		CardDragging: card.
			Border(lipgloss.DoubleBorder()).
			BorderForeground(Colors.Secondary),

		CardTitle: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		CardTitleSel: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true),

		CardMeta: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		CardAssignee: lipgloss.NewStyle().
			Foreground(Colors.Secondary).
			Italic(true),

		CardLabel: lipgloss.NewStyle().
			Foreground(Colors.Secondary),

		CardPlacehold: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Faint(true),

		Footer: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),
	}
}

// PriorityStyle returns the style for a task priority.
func PriorityStyle(p domain.Priority) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch p {
	case domain.PriorityLow:
		return base.Foreground(Colors.Low)
	case domain.PriorityHigh:
		return base.Foreground(Colors.High)
	case domain.PriorityCritical:
		return base.Foreground(Colors.Critical).Bold(true)
	default:
		return base.Foreground(Colors.Medium)
	}
}

// PriorityIcon returns a short marker for a task priority.
func PriorityIcon(p domain.Priority) string {
	switch p {
	case domain.PriorityLow:
		return "↓"
	case domain.PriorityHigh:
		return "↑"
	case domain.PriorityCritical:
		return "‼"
	default:
		return "·"
	}
}

// ColumnColor returns the configured color of a column, or the muted color.
func ColumnColor(col domain.ColumnConfig) lipgloss.Color {
	if col.Color == "" {
		return Colors.Muted
	}
	return lipgloss.Color(col.Color)
}
