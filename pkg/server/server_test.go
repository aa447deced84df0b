package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/objgraph/pkg/codec"
	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/observability"
	"github.com/matzehuels/objgraph/pkg/snapshot"
	"github.com/matzehuels/objgraph/pkg/store"
)

const selfLoop = `[[[{"self":[[0]]}]],[0]]`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	runner := snapshot.NewRunner(codec.New(), store.NewMemoryStore(), nil, nil)
	srv := httptest.NewServer(New(runner, nil))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var sb strings.Builder
	if _, err := sb.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	return resp, sb.String()
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if strings.TrimSpace(body) != `{"status":"ok"}` {
		t.Errorf("body = %s", body)
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	srv := newServer(t)
	base := srv.URL + "/snapshots/graph1"

	resp, body := do(t, http.MethodPut, base, selfLoop)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", resp.StatusCode, body)
	}
	if strings.TrimSpace(body) != `{"id":"graph1","records":1}` {
		t.Errorf("PUT body = %s", body)
	}

	resp, body = do(t, http.MethodGet, base, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d", resp.StatusCode)
	}
	if strings.TrimSpace(body) != selfLoop {
		t.Errorf("GET body = %s, want %s", body, selfLoop)
	}

	_, body = do(t, http.MethodGet, base+"/stats", "")
	var stats struct {
		Records  int    `json:"records"`
		RootKind string `json:"root_kind"`
	}
	if err := json.Unmarshal([]byte(body), &stats); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Records != 1 || stats.RootKind != "local" {
		t.Errorf("stats = %+v", stats)
	}

	resp, body = do(t, http.MethodGet, base+"/dot?detailed=true", "")
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/vnd.graphviz") {
		t.Errorf("dot content type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(body, `"r0" -> "r0" [label="self"];`) {
		t.Errorf("dot body = %s", body)
	}

	_, body = do(t, http.MethodGet, srv.URL+"/snapshots", "")
	if strings.TrimSpace(body) != `{"ids":["graph1"]}` {
		t.Errorf("list body = %s", body)
	}

	resp, _ = do(t, http.MethodDelete, base, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d", resp.StatusCode)
	}
	resp, body = do(t, http.MethodGet, base, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET after delete status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `"code":"SNAPSHOT_NOT_FOUND"`) {
		t.Errorf("error body = %s", body)
	}
}

func TestCreate(t *testing.T) {
	srv := newServer(t)
	resp, body := do(t, http.MethodPost, srv.URL+"/snapshots", selfLoop)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d: %s", resp.StatusCode, body)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(body), &created); err != nil || created.ID == "" {
		t.Fatalf("POST body = %s (%v)", body, err)
	}

	resp, _ = do(t, http.MethodGet, srv.URL+"/snapshots/"+created.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET created status = %d", resp.StatusCode)
	}
}

func TestErrors(t *testing.T) {
	srv := newServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"invalid json", http.MethodPut, "/snapshots/a", `[[`, http.StatusBadRequest},
		{"bad shape", http.MethodPut, "/snapshots/a", `{"records":[]}`, http.StatusBadRequest},
		{"root out of range", http.MethodPut, "/snapshots/a", `[[],[2]]`, http.StatusBadRequest},
		{"cyclic ancestry", http.MethodPut, "/snapshots/a", `[[[{},[0]]],[0]]`, http.StatusBadRequest},
		{"invalid id", http.MethodPut, "/snapshots/bad%20id", selfLoop, http.StatusBadRequest},
		{"missing get", http.MethodGet, "/snapshots/nope", "", http.StatusNotFound},
		{"missing delete", http.MethodDelete, "/snapshots/nope", "", http.StatusNotFound},
		{"missing stats", http.MethodGet, "/snapshots/nope/stats", "", http.StatusNotFound},
		{"unknown route", http.MethodGet, "/nothing", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
		})
	}
}

func TestListRequiresLister(t *testing.T) {
	runner := snapshot.NewRunner(codec.New(), unlisted{store.NewMemoryStore()}, nil, nil)
	srv := httptest.NewServer(New(runner, nil))
	defer srv.Close()

	resp, _ := do(t, http.MethodGet, srv.URL+"/snapshots", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

type unlisted struct{ store.Store }

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeMalformedRecord, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeCircularAncestry, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeSnapshotNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{errors.New(errors.ErrCodeNetwork, "x"), http.StatusInternalServerError},
		{context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu        sync.Mutex
	requests  int
	responses []int
}

func (h *recordingHooks) OnRequest(context.Context, string, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests++
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	srv := newServer(t)
	do(t, http.MethodGet, srv.URL+"/healthz", "")
	do(t, http.MethodGet, srv.URL+"/snapshots/nope", "")

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if hooks.requests != 2 {
		t.Errorf("requests = %d, want 2", hooks.requests)
	}
	if len(hooks.responses) != 2 || hooks.responses[0] != http.StatusOK || hooks.responses[1] != http.StatusNotFound {
		t.Errorf("responses = %v", hooks.responses)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	runner := snapshot.NewRunner(codec.New(), store.NewMemoryStore(), nil, nil)
	s := New(runner, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		if err != nil && err != http.ErrServerClosed {
			t.Errorf("ListenAndServe = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
