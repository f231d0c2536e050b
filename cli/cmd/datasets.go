package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/powerdrillai/powerdrill-flow-sub000/api"
	"github.com/powerdrillai/powerdrill-flow-sub000/cli/render"
)

// DatasetsCommand returns the datasets command with subcommands.
func DatasetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "datasets",
		Usage: "Manage datasets",
		Subcommands: []*cli.Command{
			datasetsListCommand(),
			datasetsCreateCommand(),
			datasetsDeleteCommand(),
			datasetsOverviewCommand(),
			datasetsStatusCommand(),
		},
	}
}

func datasetsListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List datasets",
		Flags: ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			a, err := newApp(c, false)
			if err != nil {
				return err
			}
			defer a.close()

			datasets, err := a.client.ListDatasets(c.Context)
			if err != nil {
				return err
			}

			r, err := render.NewRenderer(c)
			if err != nil {
				return err
			}
			return r.Render(datasets)
		},
	}
}

func datasetsCreateCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create an empty dataset",
		ArgsUsage: "<name>",
		Flags: append(ReadOnlyFlags(), &cli.StringFlag{
			Name:  "description",
			Usage: "Dataset description",
		}),
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return cli.Exit("usage: flow datasets create <name>", 2)
			}

			a, err := newApp(c, false)
			if err != nil {
				return err
			}
			defer a.close()

			id, err := a.client.CreateDataset(c.Context, api.CreateDatasetRequest{
				Name:        name,
				Description: c.String("description"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, id)
			return nil
		},
	}
}

func datasetsDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a dataset and its datasources",
		ArgsUsage: "<dataset-id>",
		Flags:     ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return cli.Exit("usage: flow datasets delete <dataset-id>", 2)
			}

			a, err := newApp(c, false)
			if err != nil {
				return err
			}
			defer a.close()

			return a.client.DeleteDataset(c.Context, id)
		},
	}
}

func datasetsOverviewCommand() *cli.Command {
	return &cli.Command{
		Name:      "overview",
		Usage:     "Show the generated summary for a dataset",
		ArgsUsage: "<dataset-id>",
		Flags:     ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return cli.Exit("usage: flow datasets overview <dataset-id>", 2)
			}

			a, err := newApp(c, false)
			if err != nil {
				return err
			}
			defer a.close()

			overview, err := a.client.DatasetOverview(c.Context, id)
			if err != nil {
				return err
			}

			r, err := render.NewRenderer(c)
			if err != nil {
				return err
			}
			return r.Render(overview)
		},
	}
}

func datasetsStatusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show datasource synchronization counts",
		ArgsUsage: "<dataset-id>",
		Flags:     ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return cli.Exit("usage: flow datasets status <dataset-id>", 2)
			}

			a, err := newApp(c, false)
			if err != nil {
				return err
			}
			defer a.close()

			status, err := a.client.GetDatasetStatus(c.Context, id)
			if err != nil {
				return err
			}

			r, err := render.NewRenderer(c)
			if err != nil {
				return err
			}
			return r.Render(status)
		},
	}
}
