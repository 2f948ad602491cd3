package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/r3labs/diff/v2"
)

// Failure records one step of a bulk operation that did not complete.
type Failure struct {
	Op     string `json:"op"`
	RuleID int64  `json:"ruleId,omitempty"`
	Code   string `json:"ruleCode,omitempty"`
	Err    error  `json:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s (%d): %v", f.Op, f.Code, f.RuleID, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Report summarises a SaveAll or Reconcile run. Callers compare the counts
// to decide whether to retry; a report with failures is never complete.
type Report struct {
	Requested int                `json:"requested"`
	Existing  int                `json:"existing"`
	Deleted   int                `json:"deleted"`
	Created   int                `json:"created"`
	Updated   int                `json:"updated"`
	Unchanged int                `json:"unchanged"`
	Changes   map[int64][]string `json:"changes,omitempty"`
	Failures  []Failure          `json:"failures,omitempty"`
}

// Complete reports whether every requested rule is now in the catalog and
// no step failed.
func (r Report) Complete() bool {
	return len(r.Failures) == 0 && r.Created+r.Updated+r.Unchanged == r.Requested
}

// Err joins the failures behind ErrPartialReplace, or returns nil.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures)+1)
	errs = append(errs, ErrPartialReplace)
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

func (r *Report) fail(op string, rule Rule, err error) {
	r.Failures = append(r.Failures, Failure{Op: op, RuleID: rule.ID, Code: rule.RuleCode, Err: err})
}

// SaveAll replaces the catalog by deleting every existing rule one at a
// time and then creating every supplied rule one at a time.
//
// The backend has no bulk endpoint, so this is not transactional. It stops
// at the first failure and returns the report so far together with
// ErrPartialReplace; the catalog may then be empty or mixed. Concurrent
// readers can observe a transiently empty catalog while it runs. Prefer
// Reconcile where possible.
func (s *Store) SaveAll(ctx context.Context, target []Rule) (Report, error) {
	report := Report{Requested: len(target)}
	for _, rule := range target {
		if err := s.Check(rule); err != nil {
			report.fail("check", rule, err)
			return report, report.Err()
		}
	}

	existing, err := s.List(ctx)
	if err != nil {
		report.fail("list", Rule{}, err)
		return report, report.Err()
	}
	report.Existing = len(existing)

	for _, rule := range existing {
		if err := s.Delete(ctx, rule.ID); err != nil {
			report.fail("delete", rule, err)
			s.logger.Error("bulk replace stopped during delete",
				"deleted", report.Deleted,
				"existing", report.Existing,
				"error", err,
			)
			return report, report.Err()
		}
		report.Deleted++
	}

	for _, rule := range target {
		rule.ID, rule.IDMinted = 0, false
		if _, err := s.Create(ctx, rule); err != nil {
			report.fail("create", rule, err)
			s.logger.Error("bulk replace stopped during create",
				"created", report.Created,
				"requested", report.Requested,
				"error", err,
			)
			return report, report.Err()
		}
		report.Created++
	}

	s.logger.Info("rule catalog replaced",
		"deleted", report.Deleted,
		"created", report.Created,
	)
	return report, nil
}

// Reconcile makes the catalog match target with the fewest writes: rules
// with a new or minted id are created, rules whose content changed are
// updated and catalog rules missing from target are deleted. It continues
// past failures and reports each of them.
func (s *Store) Reconcile(ctx context.Context, target []Rule) (Report, error) {
	report := Report{Requested: len(target), Changes: map[int64][]string{}}

	existing, err := s.List(ctx)
	if err != nil {
		report.fail("list", Rule{}, err)
		return report, report.Err()
	}
	report.Existing = len(existing)

	current := make(map[int64]Rule, len(existing))
	for _, rule := range existing {
		current[rule.ID] = rule
	}
	keep := make(map[int64]struct{}, len(target))

	for _, rule := range target {
		old, known := current[rule.ID]
		if rule.IDMinted || rule.ID == 0 || !known {
			if _, err := s.Create(ctx, rule); err != nil {
				report.fail("create", rule, err)
				continue
			}
			report.Created++
			continue
		}

		keep[rule.ID] = struct{}{}
		changes, err := Changes(old, rule)
		if err != nil {
			report.fail("diff", rule, err)
			continue
		}
		if len(changes) == 0 {
			report.Unchanged++
			continue
		}
		if _, err := s.Update(ctx, rule.ID, rule); err != nil {
			report.fail("update", rule, err)
			continue
		}
		report.Updated++
		report.Changes[rule.ID] = changes
	}

	for _, rule := range existing {
		if _, ok := keep[rule.ID]; ok {
			continue
		}
		if err := s.Delete(ctx, rule.ID); err != nil {
			report.fail("delete", rule, err)
			continue
		}
		report.Deleted++
	}

	s.logger.Info("rule catalog reconciled",
		"created", report.Created,
		"updated", report.Updated,
		"deleted", report.Deleted,
		"unchanged", report.Unchanged,
		"failures", len(report.Failures),
	)
	return report, report.Err()
}

// Changes lists the dotted paths that differ between two rules. Identity
// fields are ignored.
func Changes(from, to Rule) ([]string, error) {
	changelog, err := diff.Diff(from, to, diff.DiscardComplexOrigin(), diff.AllowTypeMismatch(true))
	if err != nil {
		return nil, fmt.Errorf("rules: diff %d: %w", to.ID, err)
	}
	out := make([]string, 0, len(changelog))
	seen := make(map[string]struct{}, len(changelog))
	for _, change := range changelog {
		path := strings.Join(change.Path, ".")
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}
	return out, nil
}
