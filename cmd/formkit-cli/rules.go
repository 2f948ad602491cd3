package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/goliatone/go-formkit/pkg/rules"
)

func newRulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "Manage the backend validation rule catalog",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "Print the rule catalog",
				Action: withRuleStore(func(ctx context.Context, cmd *cli.Command, rt *runtime, store *rules.Store) error {
					catalog, err := store.List(ctx)
					if err != nil {
						return err
					}
					return writeJSON(rt.out, catalog)
				}),
			},
			{
				Name:      "get",
				Usage:     "Print one rule",
				ArgsUsage: "<id>",
				Action: withRuleStore(func(ctx context.Context, cmd *cli.Command, rt *runtime, store *rules.Store) error {
					id, err := ruleID(cmd.Args().First())
					if err != nil {
						return err
					}
					rule, err := store.Get(ctx, id)
					if err != nil {
						return err
					}
					return writeJSON(rt.out, rule)
				}),
			},
			{
				Name:      "test",
				Usage:     "Ask the backend to evaluate a rule against a sample value",
				ArgsUsage: "<id> <value>",
				Action: withRuleStore(func(ctx context.Context, cmd *cli.Command, rt *runtime, store *rules.Store) error {
					id, err := ruleID(cmd.Args().Get(0))
					if err != nil {
						return err
					}
					result, err := store.Test(ctx, id, cmd.Args().Get(1))
					if err != nil {
						return err
					}
					return writeJSON(rt.out, result)
				}),
			},
			{
				Name:      "diff",
				Usage:     "Show how a rule file differs from the catalog without writing",
				ArgsUsage: "<file>",
				Action: withRuleStore(func(ctx context.Context, cmd *cli.Command, rt *runtime, store *rules.Store) error {
					target, err := readRules(cmd.Args().First())
					if err != nil {
						return err
					}
					current, err := store.List(ctx)
					if err != nil {
						return err
					}
					lines, err := diffRules(current, target)
					if err != nil {
						return err
					}
					for _, line := range lines {
						fmt.Fprintln(rt.out, line)
					}
					return nil
				}),
			},
			{
				Name:      "replace",
				Usage:     "Delete every rule and recreate the contents of a rule file",
				ArgsUsage: "<file>",
				Action: withRuleStore(func(ctx context.Context, cmd *cli.Command, rt *runtime, store *rules.Store) error {
					return applyRules(ctx, cmd, rt, store.SaveAll)
				}),
			},
			{
				Name:      "reconcile",
				Usage:     "Make the catalog match a rule file with the fewest writes",
				ArgsUsage: "<file>",
				Action: withRuleStore(func(ctx context.Context, cmd *cli.Command, rt *runtime, store *rules.Store) error {
					return applyRules(ctx, cmd, rt, store.Reconcile)
				}),
			},
		},
	}
}

// applyRules runs a bulk write and prints its report, also on failure.
func applyRules(ctx context.Context, cmd *cli.Command, rt *runtime, write func(context.Context, []rules.Rule) (rules.Report, error)) error {
	target, err := readRules(cmd.Args().First())
	if err != nil {
		return err
	}
	report, err := write(ctx, target)
	if werr := writeJSON(rt.out, report); werr != nil && err == nil {
		err = werr
	}
	return err
}

type ruleAction func(ctx context.Context, cmd *cli.Command, rt *runtime, store *rules.Store) error

func withRuleStore(fn ruleAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		store, err := rt.ruleStore()
		if err != nil {
			return err
		}
		return fn(ctx, cmd, rt, store)
	}
}

func ruleID(raw string) (int64, error) {
	id, ok := rules.ParseID(strings.TrimSpace(raw))
	if !ok {
		return 0, fmt.Errorf("invalid rule id %q", raw)
	}
	return id, nil
}

// readRules loads a JSON or YAML list of rule records in wire shape.
func readRules(path string) ([]rules.Rule, error) {
	if path == "" {
		return nil, errors.New("rule file is required")
	}
	var records []rules.Record
	if err := readDocument(path, &records); err != nil {
		return nil, err
	}
	out := make([]rules.Rule, 0, len(records))
	for _, rec := range records {
		out = append(out, rules.NormalizeOnRead(rec))
	}
	return out, nil
}

// diffRules lists the writes a reconcile would make: "+" creates, "-"
// deletes and "~" updates with the changed fields.
func diffRules(current, target []rules.Rule) ([]string, error) {
	byID := make(map[int64]rules.Rule, len(current))
	for _, rule := range current {
		byID[rule.ID] = rule
	}
	kept := make(map[int64]struct{}, len(target))
	lines := make([]string, 0)
	for _, rule := range target {
		existing, ok := byID[rule.ID]
		if rule.IDMinted || rule.ID == 0 || !ok {
			lines = append(lines, fmt.Sprintf("+ %s", rule.RuleCode))
			continue
		}
		kept[rule.ID] = struct{}{}
		changes, err := rules.Changes(existing, rule)
		if err != nil {
			return nil, err
		}
		if len(changes) > 0 {
			lines = append(lines, fmt.Sprintf("~ %d %s: %s", rule.ID, rule.RuleCode, strings.Join(changes, ", ")))
		}
	}
	for _, rule := range current {
		if _, ok := kept[rule.ID]; !ok {
			lines = append(lines, fmt.Sprintf("- %d %s", rule.ID, rule.RuleCode))
		}
	}
	return lines, nil
}
