package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		slog.Error("formkit failed", "error", err)
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:                  "formkit",
		Usage:                 "Fill, render and validate data-entry forms built from template records",
		EnableShellCompletion: true,
		Writer:                out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				Sources: cli.EnvVars("FORMKIT_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "templates",
				Usage: "Directory of template records (overrides templates_dir)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (text, json)",
			},
		},
		Commands: []*cli.Command{
			newFillCommand(),
			newRenderCommand(),
			newTemplatesCommand(),
			newRulesCommand(),
			newImportCommand(),
		},
	}
}
