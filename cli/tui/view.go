package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

// renderTranscript formats the turn list for the viewport.
func renderTranscript(turns []types.Turn, width int) string {
	if len(turns) == 0 {
		return HelpStyle.Render("Ask a question about your data to get started.")
	}

	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(QuestionStyle.Render("❯ " + turn.QuestionText()))
		b.WriteString("\n")

		if len(turn.Answer) == 0 {
			b.WriteString(HelpStyle.Render("  …"))
			b.WriteString("\n")
			continue
		}

		for _, sec := range turn.Answer {
			b.WriteString(renderSection(sec, wrap))
		}
	}
	return b.String()
}

func renderSection(sec types.Section, wrap lipgloss.Style) string {
	var b strings.Builder

	if sec.GroupName != "" {
		title := StatusGlyph(sec.Status) + " " + SectionTitleStyle.Render(sec.GroupName)
		if sec.Stage != "" {
			title += " " + StageStyle.Render(sec.Stage)
		}
		b.WriteString(title)
		b.WriteString("\n")
	}

	for _, block := range sec.Blocks {
		switch block.Kind {
		case types.BlockMessage:
			b.WriteString(wrap.Render(strings.TrimRight(block.Text, "\n")))
			b.WriteString("\n")
		case types.BlockCode:
			b.WriteString(CodeStyle.Render(strings.TrimRight(block.Text, "\n")))
			b.WriteString("\n")
		case types.BlockTable, types.BlockImage:
			if block.Ref != nil {
				name := block.Ref.Name
				if name == "" {
					name = strings.ToLower(string(block.Kind))
				}
				b.WriteString("  " + ArtifactStyle.Render(name) + HelpStyle.Render(" "+block.Ref.URL))
				b.WriteString("\n")
			}
		case types.BlockTask:
			if block.Task != nil && block.Task.Name != "" {
				line := fmt.Sprintf("  %s %s", StatusGlyph(block.Task.Status), block.Task.Name)
				b.WriteString(HelpStyle.Render(line))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// renderFollowUps formats the latest follow-up suggestions.
func renderFollowUps(questions []string) string {
	if len(questions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(HelpStyle.Render("Suggested:"))
	for i, q := range questions {
		b.WriteString(fmt.Sprintf("\n  %s", FollowUpStyle.Render(fmt.Sprintf("%d. %s", i+1, q))))
	}
	return b.String()
}
