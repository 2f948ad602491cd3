package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"

	"github.com/goliatone/go-formkit/pkg/openapi"
)

func newImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import-openapi",
		Usage:     "Build a template record from an OpenAPI operation request body",
		ArgsUsage: "<document>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "operation", Usage: "Operation id to import; lists operations when empty"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file, .yaml or .json (stdout if empty)"},
			&cli.BoolFlag{Name: "skip-validation", Usage: "Do not validate the OpenAPI document"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("import-openapi: document path is required")
			}
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			importer := openapi.NewImporter(
				openapi.WithSurface(rt.cfg.Surface),
				openapi.WithValidation(!cmd.Bool("skip-validation")),
				openapi.WithLogger(rt.logger.With("module", "openapi")),
			)
			doc, err := importer.LoadFS(ctx, os.DirFS(filepath.Dir(path)), filepath.Base(path))
			if err != nil {
				return err
			}

			id := cmd.String("operation")
			if id == "" {
				for _, op := range doc.Operations() {
					fmt.Fprintf(rt.out, "%s\t%s %s\t%s\n", op.ID, op.Method, op.Path, op.Summary)
				}
				return nil
			}
			record, err := importer.Import(doc, id)
			if err != nil {
				return err
			}
			return writeDocument(rt.out, cmd.String("output"), record)
		},
	}
}
