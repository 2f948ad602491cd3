package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/rules"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	argv := append([]string{"formkit", "--log-level", "error"}, args...)
	if err := newCommand(&out).Run(context.Background(), argv); err != nil {
		t.Fatalf("run %v: %v", args, err)
	}
	return out.String()
}

func TestImportOpenAPIListsOperations(t *testing.T) {
	out := run(t, "import-openapi", "../../pkg/openapi/testdata/employees.yaml")
	if !strings.Contains(out, "createEmployee\tPOST /employees\tCreate employee") {
		t.Fatalf("unexpected operations:\n%s", out)
	}
}

func TestImportOpenAPIPrintsRecord(t *testing.T) {
	out := run(t, "import-openapi", "--operation", "createEmployee", "../../pkg/openapi/testdata/employees.yaml")
	if !strings.Contains(out, `"Name": "Create employee"`) {
		t.Fatalf("unexpected record:\n%s", out)
	}
}

func TestRenderHTMLFromTemplateDirectory(t *testing.T) {
	out := run(t, "--templates", "../../pkg/templates/testdata/forms", "render", "--group", "identity", "Employee")
	if !strings.Contains(out, `data-form="Employee"`) {
		t.Fatalf("missing form element:\n%s", out)
	}
	if strings.Contains(out, `name="email"`) {
		t.Fatalf("group filter ignored:\n%s", out)
	}
}

func TestParsePairs(t *testing.T) {
	got, err := parsePairs([]string{"id=7", " csrf =a=b"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"id": "7", "csrf": "a=b"}, got); diff != "" {
		t.Fatalf("pairs mismatch (-want +got):\n%s", diff)
	}
	if _, err := parsePairs([]string{"novalue"}); err == nil {
		t.Fatalf("expected error for missing '='")
	}
}

func TestDiffRules(t *testing.T) {
	base := rules.Rule{
		ID: 1, RuleCode: "NAME_LEN", RuleName: "Name length", TargetField: "name",
		ValidationType: rules.TypeLength, Active: true,
		Parameters: []rules.Parameter{{Name: "min", Value: "3"}},
	}
	gone := base
	gone.ID, gone.RuleCode = 2, "OLD"
	changed := base
	changed.RuleName = "Name minimum"
	added := base
	added.ID, added.RuleCode = 0, "NEW"

	lines, err := diffRules([]rules.Rule{base, gone}, []rules.Rule{changed, added})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	want := []string{"~ 1 NAME_LEN: ruleName", "+ NEW", "- 2 OLD"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("diff lines mismatch (-want +got):\n%s", diff)
	}
}

func TestRulesListReadsBackendCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/validation-rules" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"4","ruleCode":"NAME_LEN","ruleName":"Name length","targetField":"name","validationType":"LENGTH","parameters":[{"name":"min","value":"3"}]}]`))
	}))
	defer srv.Close()
	t.Setenv("FORMKIT_RULES_BASE_URL", srv.URL+"/api")

	out := run(t, "rules", "list")
	for _, want := range []string{`"id": 4`, `"ruleCode": "NAME_LEN"`, `"active": true`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in:\n%s", want, out)
		}
	}
}
