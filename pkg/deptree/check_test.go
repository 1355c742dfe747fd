package deptree

import (
	"context"
	"testing"

	"github.com/matzehuels/rocks-admin/pkg/errors"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"penlight", Target{Name: "penlight"}, false},
		{"penlight@1.13.1-1", Target{Name: "penlight", Version: "1.13.1-1"}, false},
		{"penlight@", Target{Name: "penlight"}, false},
		{"", Target{}, true},
		{"../etc@1.0", Target{}, true},
		{"foo@1.0/..", Target{}, true},
	}
	for _, tt := range tests {
		got, err := ParseTarget(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTarget(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTarget(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if s := (Target{Name: "a", Version: "1"}).String(); s != "a@1" {
		t.Errorf("String() = %q", s)
	}
}

func TestSelect(t *testing.T) {
	r, _ := newTestResolver(t, Options{})

	tests := []struct {
		target Target
		want   string
		code   errors.Code
	}{
		{Target{Name: "app"}, "1.0.0-1", ""},
		{Target{Name: "app", Version: "1.0.0"}, "1.0.0-1", ""},
		{Target{Name: "app", Version: "9.9.9"}, "", errors.ErrCodeVersionNotFound},
		{Target{Name: "nope"}, "", errors.ErrCodePackageNotFound},
		{Target{Name: "bin"}, "", errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		_, ver, err := Select(r.index, tt.target)
		if tt.code != "" {
			if !errors.Is(err, tt.code) {
				t.Errorf("Select(%s) err = %v, want %s", tt.target, err, tt.code)
			}
			continue
		}
		if err != nil || ver.String() != tt.want {
			t.Errorf("Select(%s) = %q, %v; want %q", tt.target, ver, err, tt.want)
		}
	}
}

func TestRoot(t *testing.T) {
	r, _ := newTestResolver(t, Options{})
	ctx := context.Background()

	spec, err := r.Root(ctx, Target{Name: "a"})
	if err != nil || spec.Package != "a" {
		t.Fatalf("Root(a) = %+v, %v", spec, err)
	}
	if _, err := r.Root(ctx, Target{Name: "c"}); !errors.Is(err, errors.ErrCodeFetch) {
		t.Errorf("Root(c) err = %v, want FETCH_ERROR", err)
	}
	if _, err := r.Root(ctx, Target{Name: "d"}); !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("Root(d) err = %v, want PARSE_ERROR", err)
	}
}

func TestCheck(t *testing.T) {
	r, _ := newTestResolver(t, Options{})
	targets := []Target{{Name: "app"}, {Name: "nope"}, {Name: "a"}, {Name: "b"}}

	reports, err := r.Check(context.Background(), targets, 2)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(reports) != len(targets) {
		t.Fatalf("got %d reports", len(reports))
	}
	for i, rep := range reports {
		if rep.Target != targets[i] {
			t.Errorf("report %d is for %s, want %s", i, rep.Target, targets[i])
		}
	}

	if rep := reports[0]; rep.Err != nil || rep.Stats.Failures != 4 || rep.OK() {
		t.Errorf("app report = %+v", rep)
	}
	if rep := reports[1]; !errors.Is(rep.Err, errors.ErrCodePackageNotFound) || rep.OK() {
		t.Errorf("nope report = %+v", rep)
	}
	if rep := reports[2]; !rep.OK() || rep.Version != "1.0.0-1" || rep.Stats.Nodes != 2 {
		t.Errorf("a report = %+v", rep)
	}
	if rep := reports[3]; !rep.OK() {
		t.Errorf("b report = %+v", rep)
	}
}

func TestCheckCancelled(t *testing.T) {
	r, _ := newTestResolver(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Check(ctx, []Target{{Name: "app"}}, 0); err == nil {
		t.Error("Check with cancelled context should fail")
	}
}
