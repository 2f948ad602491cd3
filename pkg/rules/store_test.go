package rules_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/rules"
	"github.com/goliatone/go-formkit/pkg/testsupport"
)

func lengthRule(code, field, minLen string) rules.Rule {
	return rules.Rule{
		RuleCode:       code,
		RuleName:       code + " length",
		TargetField:    field,
		ValidationType: rules.TypeLength,
		Severity:       "high",
		Active:         true,
		Parameters:     []rules.Parameter{{Name: "min", Value: minLen}},
	}
}

func seededTransport(rs ...rules.Rule) *testsupport.FakeTransport {
	records := make([]any, 0, len(rs))
	for _, r := range rs {
		records = append(records, rules.NormalizeBeforeWrite(r))
	}
	return testsupport.NewFakeTransport(rules.DefaultBasePath, records...)
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	fake := seededTransport()
	store := rules.NewStore(fake)

	created, err := store.Create(ctx, lengthRule("NAME", "name", "2"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.IDMinted {
		t.Fatalf("expected backend id, got %+v", created)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("get mismatch (-want +got):\n%s", diff)
	}

	got.RuleName = "renamed"
	updated, err := store.Update(ctx, strconv.FormatInt(got.ID, 10), got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.RuleName != "renamed" {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(list))
	}
}

func TestUpdateRejectsNonNumericIDBeforeNetwork(t *testing.T) {
	fake := seededTransport()
	store := rules.NewStore(fake)

	for _, id := range []any{"abc", "", nil, "12a"} {
		if _, err := store.Update(context.Background(), id, lengthRule("X", "x", "1")); !errors.Is(err, rules.ErrInvalidID) {
			t.Fatalf("id %#v: expected ErrInvalidID, got %v", id, err)
		}
	}
	if calls := fake.Calls(); len(calls) != 0 {
		t.Fatalf("transport must not be called, got %+v", calls)
	}
}

func TestUpdateRefusesMintedRule(t *testing.T) {
	fake := seededTransport()
	store := rules.NewStore(fake)
	rule := lengthRule("X", "x", "1")
	rule.ID, rule.IDMinted = 1700000000000, true

	if _, err := store.Update(context.Background(), rule.ID, rule); !errors.Is(err, rules.ErrMintedID) {
		t.Fatalf("expected ErrMintedID, got %v", err)
	}
	if len(fake.Calls()) != 0 {
		t.Fatalf("transport must not be called")
	}
}

func TestCreateRequiresParameters(t *testing.T) {
	fake := seededTransport()
	store := rules.NewStore(fake)
	rule := lengthRule("X", "x", "1")
	rule.Parameters = nil

	if _, err := store.Create(context.Background(), rule); !errors.Is(err, rules.ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}
	rule = lengthRule("X", "x", "1")
	rule.Severity = "critical"
	if err := store.Check(rule); !errors.Is(err, rules.ErrInvalidRule) {
		t.Fatalf("expected severity to be rejected, got %v", err)
	}
	rule.Severity = "MEDIUM"
	if err := store.Check(rule); err != nil {
		t.Fatalf("severity check must ignore case: %v", err)
	}
	rule.Condition = "active &&"
	if err := store.Check(rule); !errors.Is(err, rules.ErrInvalidRule) {
		t.Fatalf("expected malformed condition to be rejected, got %v", err)
	}
}

func TestListFlagsMintedIDs(t *testing.T) {
	fake := testsupport.NewFakeTransport(rules.DefaultBasePath, map[string]any{
		"id": "draft-7", "ruleCode": "D", "ruleName": "d", "targetField": "x",
		"validationType": "LENGTH", "parameters": []any{map[string]any{"name": "min", "value": "1"}},
	})
	store := rules.NewStore(fake)

	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || !list[0].IDMinted {
		t.Fatalf("expected one minted rule, got %+v", list)
	}
}

func TestSaveAllStopsOnDeleteFailure(t *testing.T) {
	ctx := context.Background()
	fake := seededTransport(lengthRule("OLD1", "a", "1"), lengthRule("OLD2", "b", "1"))
	deleteFailed := errors.New("delete refused")
	fake.Fail = func(call testsupport.Call, n int) error {
		if call.Method == "DELETE" && n == 2 {
			return deleteFailed
		}
		return nil
	}
	store := rules.NewStore(fake)

	report, err := store.SaveAll(ctx, []rules.Rule{lengthRule("A", "a", "2"), lengthRule("B", "b", "2")})
	if !errors.Is(err, rules.ErrPartialReplace) || !errors.Is(err, deleteFailed) {
		t.Fatalf("expected partial replace error, got %v", err)
	}
	if report.Complete() {
		t.Fatalf("report must not be complete: %+v", report)
	}
	want := rules.Report{Requested: 2, Existing: 2, Deleted: 1, Created: 0}
	if diff := cmp.Diff(want, report, cmpopts.IgnoreFields(rules.Report{}, "Failures", "Changes")); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
	if len(report.Failures) != 1 || report.Failures[0].Op != "delete" {
		t.Fatalf("failures = %+v", report.Failures)
	}
	if fake.Len() == report.Requested {
		t.Fatalf("catalog size must be detectably inconsistent with the request")
	}
	if fake.Count("POST") != 0 {
		t.Fatalf("inserts must not start after a failed delete")
	}
}

func TestSaveAllReplacesCatalog(t *testing.T) {
	fake := seededTransport(lengthRule("OLD", "a", "1"))
	store := rules.NewStore(fake)

	report, err := store.SaveAll(context.Background(), []rules.Rule{lengthRule("A", "a", "2"), lengthRule("B", "b", "2")})
	if err != nil {
		t.Fatalf("save all: %v", err)
	}
	if !report.Complete() || report.Deleted != 1 || report.Created != 2 {
		t.Fatalf("report = %+v", report)
	}
	if fake.Len() != 2 {
		t.Fatalf("catalog size = %d", fake.Len())
	}
}

func TestSaveAllChecksTargetBeforeDeleting(t *testing.T) {
	fake := seededTransport(lengthRule("OLD", "a", "1"))
	store := rules.NewStore(fake)
	bad := lengthRule("A", "a", "2")
	bad.RuleCode = ""

	report, err := store.SaveAll(context.Background(), []rules.Rule{bad})
	if !errors.Is(err, rules.ErrInvalidRule) || !errors.Is(err, rules.ErrPartialReplace) {
		t.Fatalf("expected invalid rule error, got %v", err)
	}
	if report.Deleted != 0 || fake.Len() != 1 {
		t.Fatalf("catalog must be untouched, report=%+v size=%d", report, fake.Len())
	}
}

func TestReconcileComputesMinimalWrites(t *testing.T) {
	ctx := context.Background()
	a := lengthRule("A", "a", "10")
	a.ID = 1
	b := lengthRule("B", "b", "1")
	b.ID = 2
	c := lengthRule("C", "c", "1")
	c.ID = 3
	fake := seededTransport(a, b, c)
	store := rules.NewStore(fake)

	changedA := a
	changedA.Parameters = []rules.Parameter{{Name: "min", Value: "12"}}
	fresh := lengthRule("D", "d", "1")
	minted := lengthRule("E", "e", "1")
	minted.ID, minted.IDMinted = 1700000000000, true

	report, err := store.Reconcile(ctx, []rules.Rule{changedA, b, fresh, minted})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.Created != 2 || report.Updated != 1 || report.Unchanged != 1 || report.Deleted != 1 {
		t.Fatalf("report = %+v", report)
	}
	if !report.Complete() {
		t.Fatalf("expected complete report")
	}
	changes := report.Changes[1]
	if len(changes) == 0 || !strings.HasPrefix(changes[0], "parameters") {
		t.Fatalf("changes for rule 1 = %v", changes)
	}
	if fake.Len() != 4 {
		t.Fatalf("catalog size = %d", fake.Len())
	}
	if fake.Count("PUT") != 1 {
		t.Fatalf("expected a single update, got %d", fake.Count("PUT"))
	}
}

func TestReconcileContinuesPastFailures(t *testing.T) {
	a := lengthRule("A", "a", "1")
	a.ID = 1
	b := lengthRule("B", "b", "1")
	b.ID = 2
	fake := seededTransport(a, b)
	fake.Fail = func(call testsupport.Call, n int) error {
		if call.Method == "DELETE" && n == 1 {
			return errors.New("locked")
		}
		return nil
	}
	store := rules.NewStore(fake)

	report, err := store.Reconcile(context.Background(), []rules.Rule{lengthRule("N", "n", "1")})
	if !errors.Is(err, rules.ErrPartialReplace) {
		t.Fatalf("expected ErrPartialReplace, got %v", err)
	}
	if report.Created != 1 || report.Deleted != 1 || len(report.Failures) != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.Complete() {
		t.Fatalf("report with failures is never complete")
	}
}

func TestStoreTest(t *testing.T) {
	a := lengthRule("A", "a", "1")
	a.ID = 4
	fake := seededTransport(a)
	fake.Tester = func(id int64, value any) (bool, string) {
		return value == "ok", "rejected by rule"
	}
	store := rules.NewStore(fake)

	res, err := store.Test(context.Background(), 4, "nope")
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if res.Valid || res.Message != "rejected by rule" {
		t.Fatalf("result = %+v", res)
	}
}

func TestRulesByTemplate(t *testing.T) {
	catalog := []rules.Rule{
		lengthRule("NAME", "name", "1"),
		lengthRule("NAME_UPPER", "Name", "1"),
		lengthRule("EMAIL", "email", "1"),
	}
	tpl := model.FormTemplate{Fields: []model.FieldDescriptor{{Name: "email"}, {Name: "name"}}}

	got := rules.RulesByTemplate(tpl, catalog)
	codes := make([]string, 0, len(got))
	for _, r := range got {
		codes = append(codes, r.RuleCode)
	}
	if diff := cmp.Diff([]string{"EMAIL", "NAME"}, codes); diff != "" {
		t.Fatalf("matched rules mismatch (-want +got):\n%s", diff)
	}

	empty := rules.RulesByTemplate(model.FormTemplate{}, catalog)
	if empty == nil || len(empty) != 0 {
		t.Fatalf("template without fields must give an empty result, got %#v", empty)
	}
}
