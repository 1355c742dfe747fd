package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/rocks-admin/pkg/manifest"
)

const testManifest = `
repository = {
  penlight = {
    ["1.13.1-1"] = { { arch = "rockspec" }, { arch = "all" } },
  },
  luafilesystem = {
    ["1.8.0-1"] = { { arch = "rockspec" }, { arch = "src" } },
  },
}
`

var testFiles = map[string]string{
	"penlight-1.13.1-1.rockspec":     "package = \"penlight\"\nversion = \"1.13.1-1\"\ndependencies = { \"lua >= 5.1\", \"luafilesystem\" }\n",
	"luafilesystem-1.8.0-1.rockspec": "package = \"luafilesystem\"\nversion = \"1.8.0-1\"\n",
	"luafilesystem-1.8.0-1.src.rock": "rock",
	"penlight-1.13.1-1.all.rock":     "rock",
}

type fakeBackend struct {
	manifestErr error
}

func (f *fakeBackend) Manifest(ctx context.Context) (*manifest.Manifest, error) {
	if f.manifestErr != nil {
		return nil, f.manifestErr
	}
	return manifest.Parse(ctx, testManifest)
}

func (f *fakeBackend) Fetch(_ context.Context, path string) ([]byte, error) {
	body, ok := testFiles[path]
	if !ok {
		return nil, fmt.Errorf("fetch %s: status 404", path)
	}
	return []byte(body), nil
}

func (f *fakeBackend) Exists(_ context.Context, path string) bool {
	_, ok := testFiles[path]
	return ok
}

func get(t *testing.T, h http.Handler, path string) *http.Response {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Result()
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	h := New(&fakeBackend{}, Options{}).Handler()
	resp := get(t, h, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request id")
	}
	body := decode[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestRequestIDIsKept(t *testing.T) {
	h := New(&fakeBackend{}, Options{}).Handler()
	id := "7b0e6d8e-3f63-4c4e-9a57-2d1f0b7a9c11"

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got == "not-a-uuid" || got == "" {
		t.Errorf("invalid request id should be replaced, got %q", got)
	}
}

func TestListPackages(t *testing.T) {
	h := New(&fakeBackend{}, Options{}).Handler()
	resp := get(t, h, "/packages")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	pkgs := decode[[]packageJSON](t, resp)
	if len(pkgs) != 2 || pkgs[0].Name != "luafilesystem" || pkgs[1].Name != "penlight" {
		t.Fatalf("packages = %+v", pkgs)
	}
	if pkgs[1].Latest != "1.13.1-1" || pkgs[1].PURL != "pkg:luarocks/penlight" {
		t.Errorf("penlight = %+v", pkgs[1])
	}
	if v := pkgs[0].Versions[0]; v.Kind != "semantic" || len(v.Arches) != 2 {
		t.Errorf("luafilesystem version = %+v", v)
	}
}

func TestGetPackage(t *testing.T) {
	h := New(&fakeBackend{}, Options{}).Handler()

	resp := get(t, h, "/packages/penlight")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if p := decode[packageJSON](t, resp); p.Name != "penlight" {
		t.Errorf("package = %+v", p)
	}

	resp = get(t, h, "/packages/penlght")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	e := decode[errorJSON](t, resp)
	if e.Code != "PACKAGE_NOT_FOUND" || len(e.Suggestions) == 0 || e.Suggestions[0] != "penlight" {
		t.Errorf("error = %+v", e)
	}
}

func TestRockspec(t *testing.T) {
	h := New(&fakeBackend{}, Options{}).Handler()

	for _, path := range []string{"/packages/penlight/1.13.1-1/rockspec", "/packages/penlight/latest/rockspec"} {
		resp := get(t, h, path)
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `package = "penlight"`) {
			t.Errorf("GET %s = %d %q", path, resp.StatusCode, body)
		}
	}

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/packages/penlight/9.9.9/rockspec", http.StatusNotFound, "VERSION_NOT_FOUND"},
		{"/packages/nope/latest/rockspec", http.StatusNotFound, "PACKAGE_NOT_FOUND"},
		{"/packages/penlight/1.0..1/rockspec", http.StatusBadRequest, "INVALID_VERSION"},
	}
	for _, tt := range tests {
		resp := get(t, h, tt.path)
		if resp.StatusCode != tt.status {
			t.Errorf("GET %s status = %d, want %d", tt.path, resp.StatusCode, tt.status)
			continue
		}
		if e := decode[errorJSON](t, resp); e.Code != tt.code {
			t.Errorf("GET %s code = %s, want %s", tt.path, e.Code, tt.code)
		}
	}
}

func TestDeptree(t *testing.T) {
	h := New(&fakeBackend{}, Options{}).Handler()

	resp := get(t, h, "/packages/penlight/latest/deptree")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Package      string `json:"package"`
		Dependencies []struct {
			Name       string `json:"name"`
			Status     string `json:"status"`
			Arch       string `json:"arch"`
			FileExists bool   `json:"file_exists"`
		} `json:"dependencies"`
		Stats struct {
			Nodes    int `json:"nodes"`
			Failures int `json:"failures"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Package != "penlight" || len(body.Dependencies) != 2 || body.Stats.Nodes != 2 {
		t.Fatalf("tree = %+v", body)
	}
	if d := body.Dependencies[0]; d.Name != "lua" || d.Status != "excluded" {
		t.Errorf("lua = %+v", d)
	}
	if d := body.Dependencies[1]; d.Status != "resolved" || d.Arch != "rockspec" || !d.FileExists {
		t.Errorf("luafilesystem = %+v", d)
	}

	resp = get(t, h, "/packages/penlight/latest/deptree?arch=src")
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if d := body.Dependencies[1]; d.Arch != "src" || !d.FileExists {
		t.Errorf("luafilesystem with arch=src = %+v", d)
	}
}

func TestManifestFailure(t *testing.T) {
	h := New(&fakeBackend{manifestErr: fmt.Errorf("boom")}, Options{}).Handler()
	resp := get(t, h, "/packages")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if e := decode[errorJSON](t, resp); e.Code != "INTERNAL_ERROR" || e.Error != "boom" {
		t.Errorf("error = %+v", e)
	}
}
