package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/powerdrillai/powerdrill-flow-sub000/api"
	"github.com/powerdrillai/powerdrill-flow-sub000/cli/render"
	"github.com/powerdrillai/powerdrill-flow-sub000/transcript"
)

// SessionsCommand returns the sessions command with subcommands.
func SessionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "Manage conversations",
		Subcommands: []*cli.Command{
			sessionsListCommand(),
			sessionsCreateCommand(),
			sessionsDeleteCommand(),
			sessionsHistoryCommand(),
			sessionsUseCommand(),
		},
	}
}

func sessionsListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List conversations",
		Flags: ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			a, err := newApp(c, false)
			if err != nil {
				return err
			}
			defer a.close()

			sessions, err := a.client.ListSessions(c.Context)
			if err != nil {
				return err
			}

			r, err := render.NewRenderer(c)
			if err != nil {
				return err
			}
			return r.Render(sessions)
		},
	}
}

func sessionsCreateCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a conversation and make it active",
		ArgsUsage: "[name]",
		Flags:     ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			a, err := newApp(c, false)
			if err != nil {
				return err
			}
			defer a.close()

			name := c.Args().First()
			if name == "" {
				name = a.cfg.Session.Name
			}
			id, err := a.client.CreateSession(c.Context, api.CreateSessionRequest{
				Name:           name,
				OutputLanguage: a.cfg.Session.OutputLanguage,
				JobMode:        a.cfg.Session.JobMode,
			})
			if err != nil {
				return err
			}

			a.store.SetActiveSession(id)
			a.saveState()
			fmt.Fprintln(os.Stdout, id)
			return nil
		},
	}
}

func sessionsDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a conversation and its history",
		ArgsUsage: "<session-id>",
		Flags:     ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return cli.Exit("usage: flow sessions delete <session-id>", 2)
			}

			a, err := newApp(c, false)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.client.DeleteSession(c.Context, id); err != nil {
				return err
			}
			a.store.Forget(id)
			a.saveState()
			return nil
		},
	}
}

func sessionsUseCommand() *cli.Command {
	return &cli.Command{
		Name:      "use",
		Usage:     "Make a conversation the active one",
		ArgsUsage: "<session-id>",
		Flags:     ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return cli.Exit("usage: flow sessions use <session-id>", 2)
			}

			a, err := newApp(c, false)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := a.client.GetSession(c.Context, id); err != nil {
				return err
			}
			a.store.SetActiveSession(id)
			a.saveState()
			return nil
		},
	}
}

func sessionsHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Print a conversation's answers",
		ArgsUsage: "[session-id]",
		Flags:     append(ReadOnlyFlags(), PlainFlag),
		Action: func(c *cli.Context) error {
			a, err := newApp(c, false)
			if err != nil {
				return err
			}
			defer a.close()

			id := c.Args().First()
			if id == "" {
				id = a.store.ActiveSessionID()
			}
			if id == "" {
				return cli.Exit("no active session; pass a session id", 2)
			}

			records, err := a.client.JobHistory(c.Context, id)
			if err != nil {
				return err
			}
			turns := transcript.TurnsFromHistory(records)

			r, err := render.NewAnswerRenderer(c.Bool("plain"), terminalWidth())
			if err != nil {
				return err
			}
			for _, turn := range turns {
				fmt.Fprintf(os.Stdout, "❯ %s\n\n", turn.QuestionText())
				out, err := r.RenderTurn(turn)
				if err != nil {
					return err
				}
				fmt.Fprint(os.Stdout, out)
				fmt.Fprintln(os.Stdout)
			}
			return nil
		},
	}
}
