// Package tui implements the interactive chat interface for the flow CLI.
//
// The chat view shows the transcript in a scrollable viewport with a
// textarea prompt underneath. All session mutation goes through the
// stream session controller; the TUI only renders its observable state
// and forwards user intent (submit, cancel, quit).
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

// Color palette.
var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
	accentColor  = lipgloss.Color("#3B82F6") // Blue
)

// Styles for chat components.
var (
	// QuestionStyle for the user's submitted questions.
	QuestionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// SectionTitleStyle for answer section headings.
	SectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accentColor)

	// StageStyle for the free-text phase label next to a heading.
	StageStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	// CodeStyle for code blocks.
	CodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A5B4FC")).
			PaddingLeft(2)

	// ArtifactStyle for table and image links.
	ArtifactStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Underline(true)

	// NoticeStyle for error notices shown above the prompt.
	NoticeStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	// FollowUpStyle for suggested follow-up questions.
	FollowUpStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// HelpStyle for the key/help footer.
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// statusGlyphs mark section progress in the transcript.
const (
	glyphDone    = "✓"
	glyphRunning = "◌"
	glyphFailed  = "✗"
)

// StatusGlyph renders a section status as a colored glyph.
func StatusGlyph(status types.TaskStatus) string {
	switch status {
	case types.StatusDone:
		return lipgloss.NewStyle().Foreground(successColor).Render(glyphDone)
	case types.StatusFailed:
		return lipgloss.NewStyle().Foreground(errorColor).Render(glyphFailed)
	default:
		return lipgloss.NewStyle().Foreground(warningColor).Render(glyphRunning)
	}
}
