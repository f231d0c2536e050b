// Package cmd provides CLI commands for the flow binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags.
var (
	// ConfigFlag points at an alternate flow.yaml.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to flow.yaml (default: ./flow.yaml, then user config dir)",
	}

	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// SessionFlag selects the conversation to operate on.
	SessionFlag = &cli.StringFlag{
		Name:    "session",
		Aliases: []string{"s"},
		Usage:   "Session id (default: last active session)",
	}

	// DatasetFlag scopes questions to one dataset.
	DatasetFlag = &cli.StringFlag{
		Name:  "dataset",
		Usage: "Dataset id to ask against",
	}

	// DatasourceFlag narrows the dataset to specific datasources.
	DatasourceFlag = &cli.StringSliceFlag{
		Name:  "datasource",
		Usage: "Datasource id within the dataset (repeatable)",
	}

	// CitationFlag requests source citations in answers.
	CitationFlag = &cli.BoolFlag{
		Name:  "citation",
		Usage: "Ask for source citations in the answer",
	}

	// PlainFlag disables terminal markdown styling.
	PlainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "Print raw markdown instead of styled output",
	}
)

// ReadOnlyFlags returns the shared flags for listing commands.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		FormatFlag,
	}
}

// QuestionFlags returns the flags shared by chat and ask.
func QuestionFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		SessionFlag,
		DatasetFlag,
		DatasourceFlag,
		CitationFlag,
	}
}
