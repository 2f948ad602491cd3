package testsupport

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Call is one request seen by FakeTransport.
type Call struct {
	Method string
	Path   string
	Body   any
}

// FakeTransport is an in-memory REST collection. It serves
// GET base, GET base/{id}, POST base, PUT base/{id}, PATCH base/{id},
// DELETE base/{id} and POST base/{id}/test. Records are kept as decoded
// JSON objects and ids are assigned from a counter.
type FakeTransport struct {
	Base string
	// Fail, when set, is consulted before every call. A non-nil error is
	// returned without touching the collection.
	Fail func(call Call, n int) error
	// Tester answers POST base/{id}/test.
	Tester func(id int64, value any) (bool, string)

	mu      sync.Mutex
	records map[int64]map[string]any
	nextID  int64
	calls   []Call
}

// NewFakeTransport seeds the collection at base with records.
func NewFakeTransport(base string, records ...any) *FakeTransport {
	f := &FakeTransport{Base: strings.TrimRight(base, "/"), records: map[int64]map[string]any{}}
	for _, rec := range records {
		obj := toObject(rec)
		f.nextID++
		id := f.nextID
		if raw, ok := obj["id"]; ok {
			n, numeric := numericID(raw)
			if !numeric {
				// keep the odd id on the wire, store under a counter key
				f.records[id] = obj
				continue
			}
			id = n
			if n > f.nextID {
				f.nextID = n
			}
		}
		obj["id"] = id
		f.records[id] = obj
	}
	return f
}

// Len reports how many records the collection holds.
func (f *FakeTransport) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// Calls returns every request made so far.
func (f *FakeTransport) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Count returns how many requests used method.
func (f *FakeTransport) Count(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (f *FakeTransport) Get(ctx context.Context, path string, body, out any) error {
	return f.do(ctx, "GET", path, body, out)
}

func (f *FakeTransport) Post(ctx context.Context, path string, body, out any) error {
	return f.do(ctx, "POST", path, body, out)
}

func (f *FakeTransport) Put(ctx context.Context, path string, body, out any) error {
	return f.do(ctx, "PUT", path, body, out)
}

func (f *FakeTransport) Patch(ctx context.Context, path string, body, out any) error {
	return f.do(ctx, "PATCH", path, body, out)
}

func (f *FakeTransport) Delete(ctx context.Context, path string, body, out any) error {
	return f.do(ctx, "DELETE", path, body, out)
}

func (f *FakeTransport) do(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	call := Call{Method: method, Path: path, Body: body}
	f.calls = append(f.calls, call)
	if f.Fail != nil {
		n := 0
		for _, c := range f.calls {
			if c.Method == method {
				n++
			}
		}
		if err := f.Fail(call, n); err != nil {
			return err
		}
	}

	rest := strings.Trim(strings.TrimPrefix(path, f.Base), "/")
	parts := strings.Split(rest, "/")
	if rest == "" {
		parts = nil
	}

	switch {
	case method == "GET" && len(parts) == 0:
		ids := make([]int64, 0, len(f.records))
		for id := range f.records {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		list := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			list = append(list, f.records[id])
		}
		return decodeInto(list, out)
	case method == "POST" && len(parts) == 0:
		obj := toObject(body)
		f.nextID++
		obj["id"] = f.nextID
		f.records[f.nextID] = obj
		return decodeInto(obj, out)
	}

	if len(parts) == 0 {
		return fmt.Errorf("fake transport: %s %s: unsupported", method, path)
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return fmt.Errorf("fake transport: %s %s: bad id", method, path)
	}
	rec, ok := f.records[id]
	if !ok {
		return fmt.Errorf("fake transport: %s %s: not found", method, path)
	}

	switch {
	case method == "GET" && len(parts) == 1:
		return decodeInto(rec, out)
	case (method == "PUT" || method == "PATCH") && len(parts) == 1:
		obj := toObject(body)
		if method == "PATCH" {
			for k, v := range obj {
				rec[k] = v
			}
			obj = rec
		}
		obj["id"] = id
		f.records[id] = obj
		return decodeInto(obj, out)
	case method == "DELETE" && len(parts) == 1:
		delete(f.records, id)
		return nil
	case method == "POST" && len(parts) == 2 && parts[1] == "test":
		valid, msg := true, ""
		if f.Tester != nil {
			valid, msg = f.Tester(id, toObject(body)["value"])
		}
		return decodeInto(map[string]any{"valid": valid, "message": msg}, out)
	}
	return fmt.Errorf("fake transport: %s %s: unsupported", method, path)
}

func numericID(raw any) (int64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(raw)), 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

func toObject(v any) map[string]any {
	obj := map[string]any{}
	if v == nil {
		return obj
	}
	data, err := json.Marshal(v)
	if err != nil {
		return obj
	}
	_ = json.Unmarshal(data, &obj)
	return obj
}

func decodeInto(v any, out any) error {
	if out == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
