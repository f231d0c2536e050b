package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/powerdrillai/powerdrill-flow-sub000/adapter"
	"github.com/powerdrillai/powerdrill-flow-sub000/cli/tui"
	"github.com/powerdrillai/powerdrill-flow-sub000/iox"
	"github.com/powerdrillai/powerdrill-flow-sub000/metrics"
	"github.com/powerdrillai/powerdrill-flow-sub000/runtime"
	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

// ChatCommand returns the interactive chat command.
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:   "chat",
		Usage:  "Open an interactive chat over your data",
		Flags:  QuestionFlags(),
		Action: chatAction,
	}
}

func chatAction(c *cli.Context) error {
	a, err := newApp(c, true)
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

	relay := tui.NewRelay()
	cfg := runtime.Config{
		Transport:    a.client,
		Context:      sessCtx,
		WithCitation: c.Bool("citation") || a.cfg.Session.WithCitation,
		Logger:       a.logger,
		Collector:    metrics.NewCollector(sessionID),
	}
	relay.Bind(&cfg)
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

	// Populate the transcript before the first prompt.
	records, err := a.client.JobHistory(c.Context, sessionID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	session.LoadHistory(records)

	a.saveState()
	return tui.Run(c.Context, session, relay)
}
