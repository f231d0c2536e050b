package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/powerdrillai/powerdrill-flow-sub000/api"
	"github.com/powerdrillai/powerdrill-flow-sub000/cli/render"
)

// DatasourcesCommand returns the datasources command with subcommands.
func DatasourcesCommand() *cli.Command {
	return &cli.Command{
		Name:  "datasources",
		Usage: "Manage files inside a dataset",
		Subcommands: []*cli.Command{
			datasourcesListCommand(),
			datasourcesAddCommand(),
			datasourcesDeleteCommand(),
		},
	}
}

func datasourcesListCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List a dataset's datasources",
		ArgsUsage: "<dataset-id>",
		Flags:     ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			datasetID := c.Args().First()
			if datasetID == "" {
				return cli.Exit("usage: flow datasources list <dataset-id>", 2)
			}

			a, err := newApp(c, false)
			if err != nil {
				return err
			}
			defer a.close()

			sources, err := a.client.ListDatasources(c.Context, datasetID)
			if err != nil {
				return err
			}

			r, err := render.NewRenderer(c)
			if err != nil {
				return err
			}
			return r.Render(sources)
		},
	}
}

func datasourcesAddCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Upload a file and register it as a datasource",
		ArgsUsage: "<dataset-id> <file>",
		Flags: append(ReadOnlyFlags(), &cli.StringFlag{
			Name:  "name",
			Usage: "Datasource name (defaults to the file name)",
		}),
		Action: func(c *cli.Context) error {
			datasetID := c.Args().Get(0)
			path := c.Args().Get(1)
			if datasetID == "" || path == "" {
				return cli.Exit("usage: flow datasources add <dataset-id> <file>", 2)
			}

			a, err := newApp(c, false)
			if err != nil {
				return err
			}
			defer a.close()

			key, err := a.client.UploadFile(c.Context, path)
			if err != nil {
				return err
			}

			name := c.String("name")
			if name == "" {
				name = filepath.Base(path)
			}
			id, err := a.client.CreateDatasource(c.Context, datasetID, api.CreateDatasourceRequest{
				Name:          name,
				FileObjectKey: key,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, id)
			return nil
		},
	}
}

func datasourcesDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Remove a datasource from a dataset",
		ArgsUsage: "<dataset-id> <datasource-id>",
		Flags:     ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			datasetID := c.Args().Get(0)
			id := c.Args().Get(1)
			if datasetID == "" || id == "" {
				return cli.Exit("usage: flow datasources delete <dataset-id> <datasource-id>", 2)
			}

			a, err := newApp(c, false)
			if err != nil {
				return err
			}
			defer a.close()

			return a.client.DeleteDatasource(c.Context, datasetID, id)
		},
	}
}
