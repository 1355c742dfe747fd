package rockspec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/rocks-admin/pkg/errors"
)

const penlight = `
package = "penlight"
version = "1.13.1-1"
source = { url = "git://github.com/lunarmodules/penlight.git", tag = "1.13.1" }
description = {
   summary = "Lua utility libraries loosely based on the Python standard libraries",
   homepage = "https://lunarmodules.github.io/penlight",
   license = "MIT/X11",
}
dependencies = {
   "lua >= 5.1",
   "luafilesystem",
}
build = { type = "builtin", modules = { pl = "lua/pl/init.lua" } }
`

func TestParse(t *testing.T) {
	spec, err := Parse(context.Background(), penlight)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if spec.Package != "penlight" || spec.Version != "1.13.1-1" {
		t.Errorf("identity = %s %s", spec.Package, spec.Version)
	}
	if spec.Description.License != "MIT/X11" {
		t.Errorf("license = %q", spec.Description.License)
	}
	if len(spec.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(spec.Rules))
	}
	if spec.Rules[0].Name != "lua" || spec.Rules[1].Name != "luafilesystem" {
		t.Errorf("rules out of order: %v", spec.Rules)
	}
	if spec.Build["type"] != "builtin" {
		t.Errorf("build.type = %v", spec.Build["type"])
	}
}

func TestParseNoDependencies(t *testing.T) {
	spec, err := Parse(context.Background(), `package = "x"; version = "1.0-1"`)
	if err != nil {
		t.Fatal(err)
	}
	if len(spec.Rules) != 0 {
		t.Errorf("Rules = %v, want none", spec.Rules)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", `package = `, errors.ErrCodeParse},
		{"no package", `version = "1.0-1"`, errors.ErrCodeInvalidInput},
		{"non-string dependency", `package = "x"; dependencies = { {} }`, errors.ErrCodeParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), tt.content)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName("penlight", "1.13.1-1"))
	if err := os.WriteFile(path, []byte(penlight), 0o644); err != nil {
		t.Fatal(err)
	}
	spec, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if spec.Package != "penlight" {
		t.Errorf("Package = %q", spec.Package)
	}

	if _, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.rockspec")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Open(missing) err = %v", err)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("lpeg", "1.0.2-1"); got != "lpeg-1.0.2-1.rockspec" {
		t.Errorf("FileName() = %q", got)
	}
}
