package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/rules"
	"github.com/goliatone/go-formkit/pkg/transport/rest"
)

type seen struct {
	method string
	path   string
	body   map[string]any
	header string
}

func recordingServer(t *testing.T, status int, response string, requests *[]seen) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		if len(data) > 0 {
			_ = json.Unmarshal(data, &body)
		}
		*requests = append(*requests, seen{r.Method, r.URL.Path, body, r.Header.Get("X-Tenant")})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientSendsJSONAndDecodes(t *testing.T) {
	var requests []seen
	srv := recordingServer(t, http.StatusOK, `{"valid":false,"message":"nope"}`, &requests)

	client, err := rest.New(srv.URL+"/api/", rest.WithHeader("X-Tenant", "acme"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var out rules.TestResult
	if err := client.Post(context.Background(), "/validation-rules/3/test", map[string]any{"value": "x"}, &out); err != nil {
		t.Fatalf("post: %v", err)
	}

	if diff := cmp.Diff(rules.TestResult{Valid: false, Message: "nope"}, out); diff != "" {
		t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
	}
	want := []seen{{method: "POST", path: "/api/validation-rules/3/test", body: map[string]any{"value": "x"}, header: "acme"}}
	if diff := cmp.Diff(want, requests, cmp.AllowUnexported(seen{})); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestClientStatusError(t *testing.T) {
	var requests []seen
	srv := recordingServer(t, http.StatusConflict, "rule in use", &requests)
	client, err := rest.New(srv.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	err = client.Delete(context.Background(), "/validation-rules/1", nil, nil)
	var statusErr *rest.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusConflict || statusErr.Body != "rule in use" {
		t.Fatalf("status error = %+v", statusErr)
	}
}

func TestClientEmptyResponseLeavesOutUntouched(t *testing.T) {
	var requests []seen
	srv := recordingServer(t, http.StatusNoContent, "", &requests)
	client, _ := rest.New(srv.URL)

	out := map[string]any{"kept": true}
	if err := client.Put(context.Background(), "x", map[string]any{"a": 1}, &out); err != nil {
		t.Fatalf("put: %v", err)
	}
	if out["kept"] != true {
		t.Fatalf("out changed: %v", out)
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := rest.New("  "); !errors.Is(err, rest.ErrNoBaseURL) {
		t.Fatalf("expected ErrNoBaseURL, got %v", err)
	}
}

func TestStoreOverClient(t *testing.T) {
	var requests []seen
	srv := recordingServer(t, http.StatusOK,
		`[{"id":"5","ruleCode":"A","ruleName":"a","targetField":"name","validationType":"length","severity":"LOW","parameters":[{"name":"min","value":"1"}]}]`,
		&requests)
	client, _ := rest.New(srv.URL)
	store := rules.NewStore(client)

	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != 5 || list[0].Severity != "low" || !list[0].Active {
		t.Fatalf("list = %+v", list)
	}
	if requests[0].path != "/validation-rules" || requests[0].method != "GET" {
		t.Fatalf("request = %+v", requests[0])
	}
}

func TestPersister(t *testing.T) {
	var requests []seen
	srv := recordingServer(t, http.StatusCreated, `{}`, &requests)
	client, _ := rest.New(srv.URL)
	p := &rest.Persister{Client: client, Path: "/employees/"}

	ok, err := p.Save(context.Background(), false, "", []map[string]any{{"name": "A"}})
	if err != nil || !ok {
		t.Fatalf("create: ok=%v err=%v", ok, err)
	}
	ok, err = p.Save(context.Background(), true, "12", map[string]any{"name": "B"})
	if err != nil || !ok {
		t.Fatalf("edit: ok=%v err=%v", ok, err)
	}

	got := []string{requests[0].method + " " + requests[0].path, requests[1].method + " " + requests[1].path}
	if diff := cmp.Diff([]string{"POST /employees", "PUT /employees/12"}, got); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
}
