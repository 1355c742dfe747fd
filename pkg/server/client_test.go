package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/rocks-admin/pkg/errors"
	"github.com/matzehuels/rocks-admin/pkg/observability"
)

const testManifest = `
repository = {
  foo = { ["1.0.0-1"] = { { arch = "rockspec" }, { arch = "src" } } },
}
`

const testRockspec = `
package = "foo"
version = "1.0.0-1"
dependencies = { "bar >= 1.0" }
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	files := map[string]string{
		"/manifest":             testManifest,
		"/foo-1.0.0-1.rockspec": testRockspec,
		"/foo-1.0.0-1.src.rock": "binary",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
			return
		case "/moved":
			w.WriteHeader(http.StatusNoContent)
			return
		}
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.Method == http.MethodGet {
			w.Write([]byte(body))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://rocks.example.org", false},
		{"https://rocks.example.org/root/", false},
		{"", true},
		{"ftp://rocks.example.org", true},
	}
	for _, tt := range tests {
		_, err := New(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%q) err = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestURL(t *testing.T) {
	for _, root := range []string{"https://rocks.example.org/sub", "https://rocks.example.org/sub/"} {
		c, err := New(root)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := c.URL("manifest"), "https://rocks.example.org/sub/manifest"; got != want {
			t.Errorf("URL(manifest) with root %q = %q, want %q", root, got, want)
		}
	}
}

func TestFetch(t *testing.T) {
	c := newTestClient(t, newTestServer(t))
	ctx := context.Background()

	body, err := c.Fetch(ctx, "foo-1.0.0-1.rockspec")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != testRockspec {
		t.Errorf("Fetch body = %q", body)
	}

	if _, err := c.Fetch(ctx, "moved"); err != nil {
		t.Errorf("Fetch(204) = %v, want success", err)
	}

	tests := []struct {
		path   string
		status int
		cause  error
	}{
		{"missing.rockspec", http.StatusNotFound, ErrNotFound},
		{"broken", http.StatusInternalServerError, ErrNetwork},
	}
	for _, tt := range tests {
		_, err := c.Fetch(ctx, tt.path)
		var fe *FetchError
		if !stderrors.As(err, &fe) {
			t.Fatalf("Fetch(%q) err = %v, want *FetchError", tt.path, err)
		}
		if fe.StatusCode != tt.status || fe.Path != tt.path {
			t.Errorf("Fetch(%q) = %+v", tt.path, fe)
		}
		if !stderrors.Is(err, tt.cause) {
			t.Errorf("Fetch(%q) should wrap %v", tt.path, tt.cause)
		}
	}
}

func TestFetchUnreachable(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv)
	srv.Close()

	_, err := c.Fetch(context.Background(), "manifest")
	var fe *FetchError
	if !stderrors.As(err, &fe) || fe.StatusCode != 0 || !stderrors.Is(err, ErrNetwork) {
		t.Fatalf("Fetch on closed server = %v", err)
	}
}

func TestExists(t *testing.T) {
	c := newTestClient(t, newTestServer(t))
	ctx := context.Background()

	tests := []struct {
		path string
		want bool
	}{
		{"foo-1.0.0-1.src.rock", true},
		{"foo-1.0.0-1.all.rock", false},
		{"broken", false},
		{"moved", false}, // only 200 counts
	}
	for _, tt := range tests {
		if got := c.Exists(ctx, tt.path); got != tt.want {
			t.Errorf("Exists(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if !c.FileExists(ctx, "foo", "1.0.0-1", "src") {
		t.Error("FileExists(src) = false")
	}
	if !c.FileExists(ctx, "foo", "1.0.0-1", "rockspec") {
		t.Error("FileExists(rockspec) = false")
	}
}

func TestManifestAndRockspec(t *testing.T) {
	c := newTestClient(t, newTestServer(t))
	ctx := context.Background()

	m, err := c.Manifest(ctx)
	if err != nil {
		t.Fatalf("Manifest: %v", err)
	}
	if _, ok := m.Search("foo"); !ok {
		t.Error("foo missing from manifest")
	}

	spec, err := c.Rockspec(ctx, "foo", "1.0.0-1")
	if err != nil {
		t.Fatalf("Rockspec: %v", err)
	}
	if spec.Package != "foo" || len(spec.Rules) != 1 || spec.Rules[0].Name != "bar" {
		t.Errorf("Rockspec = %+v", spec)
	}

	_, err = c.Rockspec(ctx, "foo", "9.9.9-1")
	if !errors.Is(err, errors.ErrCodeFetch) {
		t.Errorf("missing rockspec err = %v, want FETCH_ERROR", err)
	}
	if !stderrors.Is(err, ErrNotFound) {
		t.Errorf("missing rockspec should wrap ErrNotFound")
	}
}

func TestManifestName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/manifest-5.1" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(testManifest))
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithHTTPClient(srv.Client()), WithManifestName("manifest-5.1"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Manifest(context.Background()); err != nil {
		t.Errorf("Manifest: %v", err)
	}
}

func TestArtifactName(t *testing.T) {
	tests := []struct {
		arch string
		want string
	}{
		{"all", "foo-1.0-1.all.rock"},
		{"src", "foo-1.0-1.src.rock"},
		{"rockspec", "foo-1.0-1.rockspec"},
		{"linux-x86_64", "foo-1.0-1.linux-x86_64"},
	}
	for _, tt := range tests {
		if got := ArtifactName("foo", "1.0-1", tt.arch); got != tt.want {
			t.Errorf("ArtifactName(%q) = %q, want %q", tt.arch, got, tt.want)
		}
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu        sync.Mutex
	responses []int
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	c := newTestClient(t, newTestServer(t))
	c.Exists(context.Background(), "manifest")
	c.Fetch(context.Background(), "missing")

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.responses) != 2 || hooks.responses[0] != 200 || hooks.responses[1] != 404 {
		t.Errorf("responses = %v, want [200 404]", hooks.responses)
	}
}
