package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/solutionmap/pkg/config"
	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/observability"
	"github.com/matzehuels/solutionmap/pkg/records"
)

func sampleRecords() records.Collections {
	return records.Collections{
		Categories: []records.Row{
			{records.FieldID: "c1", records.FieldCategoryName: "Energy"},
			{records.FieldID: "c2", records.FieldCategoryName: "Water"},
		},
		Subcategories: []records.Row{
			{records.FieldID: "s1", records.FieldSubcategoryName: "Storage", records.FieldParentCategory: "['Energy']"},
		},
		Solutions: []records.Row{
			{records.FieldSolutionName: "Battery", records.FieldSolutionSubcategory: "Storage"},
			{records.FieldSolutionName: "Filter", records.FieldSolutionCategory: "Water"},
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(Options{Source: records.Static(sampleRecords()), Config: config.Default()})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

type sessionJSON struct {
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
	Busy    bool   `json:"busy"`
	Frame   struct {
		View  string          `json:"view"`
		Frame json.RawMessage `json:"frame"`
	} `json:"frame"`
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t)

	if resp := do(t, "GET", ts.URL+"/healthz", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
	resp := do(t, "GET", ts.URL+"/api/version", "")
	info := decode[map[string]string](t, resp)
	if info["version"] == "" {
		t.Errorf("version = %v", info)
	}
}

func TestTree(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, "GET", ts.URL+"/api/tree", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("ETag") == "" {
		t.Error("missing ETag")
	}
	body := decode[struct {
		Tree struct {
			Name     string `json:"name"`
			Children []any  `json:"children"`
		} `json:"tree"`
	}](t, resp)
	if body.Tree.Name != "All Categories" || len(body.Tree.Children) != 2 {
		t.Errorf("tree = %+v", body.Tree)
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, "GET", ts.URL+"/api/render/icicle.svg?click=Energy", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/svg+xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(data, []byte("All Categories &gt; Energy")) && !bytes.Contains(data, []byte("All Categories > Energy")) {
		t.Errorf("svg should show the breadcrumb, got %.200s", data)
	}
	if got := resp.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q, want miss", got)
	}
	again := do(t, "GET", ts.URL+"/api/render/icicle.svg?click=Energy", "")
	if got := again.Header.Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}

	tests := []struct {
		path   string
		status int
		code   errs.Code
	}{
		{"/api/render/tower.svg", http.StatusBadRequest, errs.ErrCodeInvalidView},
		{"/api/render/tree.gif", http.StatusBadRequest, errs.ErrCodeInvalidFormat},
		{"/api/render/tree.svg?width=-3", http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"/api/render/icicle.json?click=Nowhere", http.StatusNotFound, errs.ErrCodeNodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := do(t, "GET", ts.URL+tt.path, "")
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			body := decode[errorBody](t, resp)
			if body.Error != tt.code {
				t.Errorf("error = %q, want %q", body.Error, tt.code)
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, "POST", ts.URL+"/api/diagrams", `{"view": "icicle"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decode[sessionJSON](t, resp)
	if created.ID == "" || created.Frame.View != "icicle" {
		t.Fatalf("created = %+v", created)
	}
	base := ts.URL + "/api/diagrams/" + created.ID

	resp = do(t, "POST", base+"/click", `{"ref": "Energy/Storage"}`)
	if got := decode[sessionJSON](t, resp); got.Outcome != "applied" {
		t.Errorf("click outcome = %q, want applied", got.Outcome)
	}
	resp = do(t, "POST", base+"/click/0", "")
	if got := decode[sessionJSON](t, resp); got.Outcome != "applied" {
		t.Errorf("click root outcome = %q, want applied", got.Outcome)
	}
	resp = do(t, "POST", base+"/up", "")
	if got := decode[sessionJSON](t, resp); got.Outcome != "ignored" {
		t.Errorf("up at root outcome = %q, want ignored", got.Outcome)
	}

	resp = do(t, "GET", base, "")
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/svg+xml") {
		t.Errorf("svg Content-Type = %q", ct)
	}

	if resp := do(t, "DELETE", base, ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp = do(t, "GET", base+"/frame", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("frame after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestSessionErrors(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, "POST", ts.URL+"/api/diagrams", `{"view": "nodelink"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("nodelink session status = %d, want 400", resp.StatusCode)
	}
	resp = do(t, "POST", ts.URL+"/api/diagrams", `{"view": "tree", "bogus": 1}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown field status = %d, want 400", resp.StatusCode)
	}

	resp = do(t, "POST", ts.URL+"/api/diagrams", `{"view": "tree"}`)
	created := decode[sessionJSON](t, resp)
	base := ts.URL + "/api/diagrams/" + created.ID

	resp = do(t, "POST", base+"/click/not_a_token", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid ref status = %d, want 400", resp.StatusCode)
	}
	resp = do(t, "POST", base+"/click/deadbeef", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown token status = %d, want 404", resp.StatusCode)
	}
	resp = do(t, "POST", base+"/up", "")
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("tree up status = %d, want 501", resp.StatusCode)
	}
	resp = do(t, "GET", ts.URL+"/api/diagrams/missing/frame", "")
	if body := decode[errorBody](t, resp); body.Error != errs.ErrCodeSessionNotFound {
		t.Errorf("missing session error = %q", body.Error)
	}
}

func TestStreamEndsWhenIdle(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, "POST", ts.URL+"/api/diagrams", `{"view": "sunburst"}`)
	created := decode[sessionJSON](t, resp)
	base := ts.URL + "/api/diagrams/" + created.ID

	do(t, "POST", base+"/click", `{"ref": "Water"}`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", base+"/stream", nil)
	stream, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Body.Close()
	data, err := io.ReadAll(stream.Body)
	if err != nil && !errors.Is(err, io.EOF) {
		t.Fatalf("read stream: %v", err)
	}
	if n := bytes.Count(data, []byte("event: frame")); n < 1 {
		t.Errorf("stream sent %d frames", n)
	}
}

type recordingServerHooks struct {
	observability.NoopServerHooks
	routes chan string
}

func (h *recordingServerHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.routes <- method + " " + route
}

func TestServerHooksUseRoutePatterns(t *testing.T) {
	h := &recordingServerHooks{routes: make(chan string, 8)}
	observability.SetServerHooks(h)
	defer observability.Reset()

	ts := newTestServer(t)
	do(t, "GET", ts.URL+"/api/diagrams/abc/frame", "")

	select {
	case got := <-h.routes:
		if got != "GET /api/diagrams/{id}/frame" {
			t.Errorf("route = %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no response hook")
	}
}
