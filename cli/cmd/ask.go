package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/powerdrillai/powerdrill-flow-sub000/adapter"
	"github.com/powerdrillai/powerdrill-flow-sub000/cli/render"
	"github.com/powerdrillai/powerdrill-flow-sub000/iox"
	"github.com/powerdrillai/powerdrill-flow-sub000/metrics"
	"github.com/powerdrillai/powerdrill-flow-sub000/runtime"
	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

// AskCommand returns the one-shot question command.
func AskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask a single question and print the answer",
		ArgsUsage: "<question>",
		Flags:     append(QuestionFlags(), PlainFlag),
		Action:    askAction,
	}
}

func askAction(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return cli.Exit("usage: flow ask <question>", 2)
	}

	a, err := newApp(c, false)
	if err != nil {
		return err
	}
	defer a.close()

	sessionID, err := a.resolveSession(c)
	if err != nil {
		return err
	}
	sessCtx := a.sessionContext(c, sessionID)

	sink, err := a.newAdapter()
	if err != nil {
		return err
	}
	if sink != nil {
		defer iox.DiscardClose(sink)
	}

	var failed *runtime.Notice
	cfg := runtime.Config{
		Transport:    a.client,
		Context:      sessCtx,
		WithCitation: c.Bool("citation") || a.cfg.Session.WithCitation,
		Logger:       a.logger,
		Collector:    metrics.NewCollector(sessionID),
		Notifier: runtime.NotifierFunc(func(n runtime.Notice) {
			failed = &n
			printErr(os.Stderr, n)
		}),
	}
	if sink != nil {
		cfg.OnTurnCompleted = func(turn types.Turn) {
			ev := adapter.NewTurnCompletedEvent(sessionID, turn)
			if err := sink.Publish(c.Context, ev); err != nil {
				a.logger.Warn("publishing turn event failed", map[string]any{"error": err.Error()})
			}
		}
	}

	session, err := runtime.NewSession(cfg)
	if err != nil {
		return err
	}

	session.Submit(c.Context, question)
	a.saveState()

	turns := session.Turns()
	if len(turns) == 0 {
		if failed != nil {
			return cli.Exit("", 1)
		}
		return errors.New("no answer received")
	}

	r, err := render.NewAnswerRenderer(c.Bool("plain"), terminalWidth())
	if err != nil {
		return err
	}
	out, err := r.RenderTurn(turns[len(turns)-1])
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, out)

	if qs := session.Questions(); len(qs) > 0 && c.Bool("plain") {
		fmt.Fprintln(os.Stdout)
		for _, q := range qs {
			fmt.Fprintf(os.Stdout, "- %s\n", q)
		}
	}

	if failed != nil {
		return cli.Exit("", 1)
	}
	return nil
}

// terminalWidth reports the stdout width, or 0 when unknown.
func terminalWidth() int {
	if info, err := os.Stdout.Stat(); err == nil && (info.Mode()&os.ModeCharDevice) != 0 {
		return 100
	}
	return 0
}
