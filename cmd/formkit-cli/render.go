package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/goliatone/go-formkit/pkg/render"
)

func newRenderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a template with one of the registered renderers",
		ArgsUsage: "<template>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "renderer", Aliases: []string{"r"}, Usage: "Renderer name (html, tui)"},
			&cli.StringSliceFlag{Name: "group", Usage: "Only render these groups (repeatable)"},
			&cli.StringFlag{Name: "action", Usage: "Form action URL"},
			&cli.StringFlag{Name: "method", Usage: "Form method", Value: "post"},
			&cli.StringSliceFlag{Name: "hidden", Usage: "Hidden input as name=value (repeatable)"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file (stdout if empty)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				return errors.New("render: template name is required")
			}
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			hidden, err := parsePairs(cmd.StringSlice("hidden"))
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}
			eng, err := rt.engine()
			if err != nil {
				return err
			}
			defer eng.Close()

			out, err := eng.Render(ctx, name, cmd.String("renderer"), render.RenderOptions{
				Groups: cmd.StringSlice("group"),
				Action: cmd.String("action"),
				Method: cmd.String("method"),
				Hidden: hidden,
			})
			if err != nil {
				return err
			}
			if path := cmd.String("output"); path != "" {
				if err := os.WriteFile(path, out, 0o644); err != nil {
					return fmt.Errorf("render: write output: %w", err)
				}
				rt.logger.Info("form written", "path", path)
				return nil
			}
			_, err = rt.out.Write(out)
			return err
		},
	}
}

func parsePairs(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, pair := range raw {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid pair %q, want name=value", pair)
		}
		out[strings.TrimSpace(key)] = value
	}
	return out, nil
}
