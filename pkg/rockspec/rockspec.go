// Package rockspec parses rockspec documents and their dependency rules.
//
// A rockspec is a Lua table document; [Parse] evaluates it with
// [luatable.Parse] and extracts package, version, description, source,
// dependencies and build. Dependency strings are parsed into [Rule] values in
// declaration order.
package rockspec

import (
	"context"
	"fmt"
	"os"

	"github.com/matzehuels/rocks-admin/pkg/errors"
	"github.com/matzehuels/rocks-admin/pkg/luatable"
)

// Extension is the file suffix of rockspec documents.
const Extension = ".rockspec"

var bindings = []string{"package", "version", "description", "source", "dependencies", "build"}

// Spec is a parsed rockspec.
type Spec struct {
	Package     string         // Package name
	Version     string         // Version as written in the document
	Description Description    // Optional description block
	Source      map[string]any // Opaque source table
	Rules       []Rule         // Dependency rules in declaration order
	Build       map[string]any // Opaque build table
}

// Description holds the commonly displayed description fields.
type Description struct {
	Summary  string
	License  string
	Homepage string
}

// FileName returns "{name}-{version}.rockspec".
func FileName(name, version string) string {
	return fmt.Sprintf("%s-%s%s", name, version, Extension)
}

// Parse evaluates content and builds a Spec. Evaluation failures are
// PARSE_ERROR; a document without a package name is INVALID_INPUT.
func Parse(ctx context.Context, content string) (*Spec, error) {
	doc, err := luatable.Parse(ctx, content, bindings...)
	if err != nil {
		return nil, err
	}

	spec := &Spec{
		Package: doc.String("package"),
		Version: doc.String("version"),
		Source:  doc.Table("source"),
		Build:   doc.Table("build"),
	}
	if spec.Package == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "rockspec has no package name")
	}

	if d := doc.Table("description"); d != nil {
		spec.Description = Description{
			Summary:  stringOf(d["summary"]),
			License:  stringOf(d["license"]),
			Homepage: stringOf(d["homepage"]),
		}
	}

	for _, dep := range doc.List("dependencies") {
		line, ok := dep.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeParse, "%s: dependency entry %v is not a string", spec.Package, dep)
		}
		spec.Rules = append(spec.Rules, ParseRule(line))
	}
	return spec, nil
}

// Open reads and parses a rockspec file from disk.
func Open(ctx context.Context, path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read %s", path)
	}
	return Parse(ctx, string(data))
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}
