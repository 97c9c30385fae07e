package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the terminal color scheme.
type Theme struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Dim     lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme is a forest green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#2ecc71"),
	Accent:  lipgloss.Color("#f39c12"),
	Dim:     lipgloss.Color("#6e7681"),
	Error:   lipgloss.Color("#e74c3c"),
}

// Styles holds the derived lipgloss styles for chat rendering.
type Styles struct {
	UserLabel  lipgloss.Style
	AgentLabel lipgloss.Style
	Thinking   lipgloss.Style
	TripTitle  lipgloss.Style
	TripBorder lipgloss.Style
	Error      lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles derives styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		UserLabel:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		AgentLabel: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Thinking:   lipgloss.NewStyle().Italic(true).Foreground(t.Dim),
		TripTitle:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		TripBorder: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
		Error:      lipgloss.NewStyle().Foreground(t.Error),
		Help:       lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// RenderAgentMessage formats one assistant message with its role label.
func (s Styles) RenderAgentMessage(role, text string) string {
	label := "assistant"
	if role != "" {
		label = role
	}
	return s.AgentLabel.Render(label+":") + " " + text
}

// RenderUserPrompt is the prompt shown before user input.
func (s Styles) RenderUserPrompt() string {
	return s.UserLabel.Render("you:") + " "
}

// RenderThinking formats a thinking step shown while waiting for the
// assistant.
func (s Styles) RenderThinking(text string) string {
	return s.Thinking.Render("· " + text)
}

// RenderTripCard formats one trip suggestion as a bordered card.
func (s Styles) RenderTripCard(trip map[string]any) string {
	var b strings.Builder

	if title, ok := trip["title"].(string); ok && title != "" {
		b.WriteString(s.TripTitle.Render(title))
		b.WriteString("\n")
	}
	for _, field := range []string{"destination", "duration", "difficulty", "description"} {
		if v, ok := trip[field]; ok {
			b.WriteString(fmt.Sprintf("%s: %v\n", field, v))
		}
	}

	return s.TripBorder.Render(strings.TrimRight(b.String(), "\n"))
}
