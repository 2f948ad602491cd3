package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	cli "github.com/urfave/cli/v3"

	"github.com/goliatone/go-formkit/pkg/engine"
	"github.com/goliatone/go-formkit/pkg/renderers/tui"
	"github.com/goliatone/go-formkit/pkg/transport/rest"
	"github.com/goliatone/go-formkit/pkg/validation"
)

const maxFillAttempts = 3

func newFillCommand() *cli.Command {
	return &cli.Command{
		Name:      "fill",
		Usage:     "Fill a form in the terminal, validate it and print or submit the payload",
		ArgsUsage: "<template>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "edit-id",
				Usage: "Edit the record with this id instead of creating new ones",
			},
			&cli.StringFlag{
				Name:  "edit-record",
				Usage: "JSON or YAML file holding the record being edited",
			},
			&cli.StringSliceFlag{
				Name:  "group",
				Usage: "Only prompt for these groups (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "submit",
				Usage: "Send the payload to submit_path on the backend instead of printing it",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				return errors.New("fill: template name is required")
			}
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}

			persister, err := rt.persister(cmd.Bool("submit"))
			if err != nil {
				return err
			}
			eng, err := rt.engine(engine.WithPersister(persister))
			if err != nil {
				return err
			}
			defer eng.Close()

			opts := engine.OpenOptions{EditID: cmd.String("edit-id")}
			if path := cmd.String("edit-record"); path != "" {
				if err := readDocument(path, &opts.EditRecord); err != nil {
					return fmt.Errorf("fill: %w", err)
				}
			}
			form, err := eng.Open(ctx, name, opts)
			if err != nil {
				return err
			}
			defer form.Close()

			driver := tui.NewSurveyDriver(os.Stderr)
			prompts := tui.New(tui.WithPromptDriver(driver), tui.WithLogger(rt.logger))
			multi := opts.EditID == ""
			if err := fillEntries(ctx, form, prompts, driver, cmd.StringSlice("group"), multi); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					rt.logger.Info("fill aborted", "template", name)
					return nil
				}
				return err
			}

			outcome, err := form.Submit(ctx)
			if engine.IsValidationFailure(err) {
				reportErrors(ctx, prompts, outcome)
			}
			if err != nil {
				return err
			}
			rt.logger.Info("form submitted", "template", name, "status", outcome.Status.String())
			return nil
		},
	}
}

// persister posts to the backend when submit is set and prints the payload
// otherwise.
func (r *runtime) persister(submit bool) (validation.Persister, error) {
	if !submit {
		return printPersister(r.out), nil
	}
	if r.cfg.SubmitPath == "" {
		return nil, errors.New("fill: submit_path is not configured")
	}
	client, err := r.client()
	if err != nil {
		return nil, err
	}
	return &rest.Persister{Client: client, Path: r.cfg.SubmitPath}, nil
}

func printPersister(w io.Writer) validation.Persister {
	return validation.PersisterFunc(func(_ context.Context, _ bool, _ string, body any) (bool, error) {
		if err := writeJSON(w, body); err != nil {
			return false, err
		}
		return true, nil
	})
}

type confirmer interface {
	Confirm(ctx context.Context, cfg tui.ConfirmConfig) (bool, error)
}

// fillEntries prompts for the first entry and, when multi is set, keeps
// adding entries while the user asks for more.
func fillEntries(ctx context.Context, form *engine.Form, prompts *tui.Renderer, confirm confirmer, groups []string, multi bool) error {
	for index := 0; ; index++ {
		if index > 0 {
			if _, err := form.AddEntry(); err != nil {
				return err
			}
		}
		if err := fillEntry(ctx, form, prompts, index, groups); err != nil {
			return err
		}
		if !multi {
			return nil
		}
		more, err := confirm.Confirm(ctx, tui.ConfirmConfig{Message: "Add another entry?"})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// fillEntry prompts every field of one entry and re-prompts while any field
// still carries an error.
func fillEntry(ctx context.Context, form *engine.Form, prompts *tui.Renderer, index int, groups []string) error {
	for attempt := 0; attempt < maxFillAttempts; attempt++ {
		if _, err := form.Fill(ctx, prompts, index, groups...); err != nil {
			return err
		}
		errs := form.Session().Errors()
		if index >= len(errs) || !errs[index].HasErrors() {
			return nil
		}
		fields := make([]string, 0, len(errs[index]))
		for field := range errs[index] {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			if err := prompts.Info(ctx, errs[index][field]); err != nil {
				return err
			}
		}
	}
	return nil
}

func reportErrors(ctx context.Context, prompts *tui.Renderer, outcome validation.Outcome) {
	for i, record := range outcome.Errors {
		fields := make([]string, 0, len(record))
		for field := range record {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			_ = prompts.Info(ctx, fmt.Sprintf("entry %d: %s", i+1, record[field]))
		}
	}
}
