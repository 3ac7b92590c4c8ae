package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

// Theme defines the colour palette for command output.
type Theme struct {
	// Primary is the accent colour for headings.
	Primary lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success marks products in stock and successful passes.
	Success lipgloss.Color

	// Warning marks unknown status and target prices met.
	Warning lipgloss.Color

	// Error marks products out of stock and failed passes.
	Error lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Muted    lipgloss.Style
	InStock  lipgloss.Style
	OutStock lipgloss.Style
	Unknown  lipgloss.Style
	Target   lipgloss.Style
	Failed   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		InStock: lipgloss.NewStyle().
			Foreground(theme.Success),

		OutStock: lipgloss.NewStyle().
			Foreground(theme.Error),

		Unknown: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Target: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Warning),

		Failed: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Error),
	}
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Status renders a stock status in its colour.
func (s *Styles) Status(status domain.StockStatus) string {
	switch status {
	case domain.StatusInStock:
		return s.InStock.Render(status.String())
	case domain.StatusOutOfStock:
		return s.OutStock.Render(status.String())
	default:
		return s.Unknown.Render(domain.StatusUnknown.String())
	}
}

var styles = NewStyles(nil)
