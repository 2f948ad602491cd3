package main

import (
	"context"
	"errors"
	"fmt"

	cli "github.com/urfave/cli/v3"
)

func newTemplatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "Inspect the template directory",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List loaded templates and their sources",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					rt, err := loadRuntime(cmd)
					if err != nil {
						return err
					}
					store, err := rt.templates()
					if err != nil {
						return err
					}
					for _, name := range store.Names() {
						doc, err := store.Document(name)
						if err != nil {
							return err
						}
						fmt.Fprintf(rt.out, "%s\t%s\t%d fields\n", name, doc.Source, len(doc.Record.Fields))
					}
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "Print the built form template for the configured surface",
				ArgsUsage: "<template>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						return errors.New("templates show: template name is required")
					}
					rt, err := loadRuntime(cmd)
					if err != nil {
						return err
					}
					eng, err := rt.engine()
					if err != nil {
						return err
					}
					defer eng.Close()
					tpl, err := eng.Template(ctx, name)
					if err != nil {
						return err
					}
					return writeJSON(rt.out, tpl)
				},
			},
		},
	}
}
