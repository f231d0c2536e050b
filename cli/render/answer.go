package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

// AnswerMarkdown flattens a turn's answer into a markdown document.
// Section names become headings, code blocks become fences, and
// artifact references become links. Task blocks render as progress
// lines so interrupted answers still show how far the job got.
func AnswerMarkdown(turn types.Turn) string {
	var b strings.Builder

	for _, sec := range turn.Answer {
		if sec.GroupName != "" {
			fmt.Fprintf(&b, "## %s\n\n", sec.GroupName)
		}
		if sec.Status != types.StatusDone {
			fmt.Fprintf(&b, "_%s_\n\n", sec.Status)
		}

		for _, block := range sec.Blocks {
			switch block.Kind {
			case types.BlockMessage:
				b.WriteString(strings.TrimRight(block.Text, "\n"))
				b.WriteString("\n\n")
			case types.BlockCode:
				fmt.Fprintf(&b, "```\n%s\n```\n\n", strings.TrimRight(block.Text, "\n"))
			case types.BlockTable, types.BlockImage:
				if block.Ref != nil {
					name := block.Ref.Name
					if name == "" {
						name = strings.ToLower(string(block.Kind))
					}
					fmt.Fprintf(&b, "- [%s](%s)\n\n", name, block.Ref.URL)
				}
			case types.BlockTask:
				if block.Task != nil && block.Task.Name != "" {
					fmt.Fprintf(&b, "> %s: %s\n\n", block.Task.Name, block.Task.Status)
				}
			}
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// AnswerRenderer renders finalized answers for the terminal.
type AnswerRenderer struct {
	term *glamour.TermRenderer
}

// NewAnswerRenderer creates a terminal markdown renderer. plain skips
// styling and emits raw markdown, for piped output.
func NewAnswerRenderer(plain bool, width int) (*AnswerRenderer, error) {
	if plain {
		return &AnswerRenderer{}, nil
	}
	if width <= 0 {
		width = 100
	}
	term, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("render: init markdown renderer: %w", err)
	}
	return &AnswerRenderer{term: term}, nil
}

// RenderTurn renders one turn's answer.
func (r *AnswerRenderer) RenderTurn(turn types.Turn) (string, error) {
	md := AnswerMarkdown(turn)
	if r.term == nil {
		return md, nil
	}
	out, err := r.term.Render(md)
	if err != nil {
		return "", fmt.Errorf("render: markdown: %w", err)
	}
	return out, nil
}
