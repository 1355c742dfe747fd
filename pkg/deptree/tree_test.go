package deptree

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/rocks-admin/pkg/rockspec"
	"github.com/matzehuels/rocks-admin/pkg/version"
)

func TestCollect(t *testing.T) {
	r, src := newTestResolver(t, Options{})
	spec := rootSpec(t, src, "app")

	tree, err := Collect(spec.Package, spec.Version, r.Walk(context.Background(), spec))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if tree.ID == "" || tree.PURL != "pkg:luarocks/app@1.0.0-1" {
		t.Errorf("tree header = %+v", tree)
	}
	if len(tree.Children) != 7 {
		t.Fatalf("direct dependencies = %d, want 7", len(tree.Children))
	}

	a := tree.Children[2]
	if a.Name != "a" || len(a.Children) != 1 {
		t.Fatalf("a = %+v", a)
	}
	b := a.Children[0]
	if b.Name != "b" || len(b.Children) != 1 || b.Children[0].Status != StatusCycle {
		t.Fatalf("b = %+v", b)
	}

	if got, want := tree.Stats(), (Stats{Nodes: 9, Failures: 4}); got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
	if ghost := tree.Children[3]; ghost.Arch != "" || ghost.Version != "" || ghost.PURL != "pkg:luarocks/ghost" {
		t.Errorf("unresolved node = %+v", ghost)
	}
	if invalid := tree.Children[6]; invalid.Error == "" {
		t.Errorf("spec-invalid node should carry the parse error")
	}
}

func TestCollectCancelled(t *testing.T) {
	r, src := newTestResolver(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect("app", "1.0.0-1", r.Walk(ctx, rootSpec(t, src, "app")))
	if err != context.Canceled {
		t.Errorf("Collect err = %v, want context.Canceled", err)
	}
}

func TestEventSummary(t *testing.T) {
	ver := version.Parse("1.2.0-1")
	tests := []struct {
		ev   Event
		want string
	}{
		{Event{Status: StatusExcluded}, "[✓, excluded]"},
		{Event{Status: StatusSelfCycle}, "[✓, cyclicdep]"},
		{Event{Status: StatusPackageNotFound}, "[x, not found in manifest]"},
		{Event{Status: StatusVersionNotFound}, "[x, version not found]"},
		{Event{Status: StatusSpecMissing, Version: ver}, "[1.2.0-1 x, has rockspec in manifest, but file not found]"},
		{Event{Status: StatusResolved, Version: ver, Arch: "rockspec", InManifest: true}, "[1.2.0-1 rockspec: manifest(✓)/file(x) ]"},
	}
	for _, tt := range tests {
		if got := tt.ev.Summary(); got != tt.want {
			t.Errorf("Summary(%s) = %q, want %q", tt.ev.Status, got, tt.want)
		}
	}

	ev := Event{Rule: rockspec.ParseRule("foo >= 1.0"), Status: StatusResolved, Version: ver, Arch: "src", FileExists: true}
	if got := ev.String(); !strings.HasPrefix(got, "foo >= 1.0 [1.2.0-1 src: manifest(x)/file(✓)") {
		t.Errorf("String() = %q", got)
	}
}

func TestPURL(t *testing.T) {
	tests := []struct {
		name, ver, want string
	}{
		{"penlight", "1.13.1-1", "pkg:luarocks/penlight@1.13.1-1"},
		{"penlight", "", "pkg:luarocks/penlight"},
	}
	for _, tt := range tests {
		if got := PURL(tt.name, tt.ver); got != tt.want {
			t.Errorf("PURL(%q, %q) = %q, want %q", tt.name, tt.ver, got, tt.want)
		}
	}
}
