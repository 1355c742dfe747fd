package deptree

import (
	"context"
	"strings"

	"github.com/matzehuels/rocks-admin/pkg/errors"
	"github.com/matzehuels/rocks-admin/pkg/manifest"
	"github.com/matzehuels/rocks-admin/pkg/rockspec"
	"github.com/matzehuels/rocks-admin/pkg/version"
)

// Target names a root package, optionally pinned to a version.
type Target struct {
	Name    string
	Version string // Empty selects the latest main version, else the latest semantic
}

// ParseTarget splits "name" or "name@version".
func ParseTarget(s string) (Target, error) {
	name, ver, _ := strings.Cut(s, "@")
	if err := errors.ValidatePackageName(name); err != nil {
		return Target{}, err
	}
	if ver != "" {
		if err := errors.ValidateVersion(ver); err != nil {
			return Target{}, err
		}
	}
	return Target{Name: name, Version: ver}, nil
}

func (t Target) String() string {
	if t.Version == "" {
		return t.Name
	}
	return t.Name + "@" + t.Version
}

// Select resolves t against the manifest to a version that publishes a
// rockspec.
func Select(index *manifest.Manifest, t Target) (*manifest.Package, version.Value, error) {
	pkg, ok := index.Search(t.Name)
	if !ok {
		return nil, version.Value{}, errors.New(errors.ErrCodePackageNotFound, "not found: %s", t.Name)
	}

	var ver version.Value
	if t.Version != "" {
		if ver, ok = pkg.Version(t.Version); !ok {
			return nil, version.Value{}, errors.New(errors.ErrCodeVersionNotFound, "version not found: %s", t.Version)
		}
	} else if ver, ok = pkg.Latest(); !ok {
		return nil, version.Value{}, errors.New(errors.ErrCodeVersionNotFound, "unable to find any latest version of %s", t.Name)
	}

	if !pkg.HasArch(ver, manifest.ArchRockspec) {
		return nil, version.Value{}, errors.New(errors.ErrCodeNotFound, "version %s: has no `%s` arch", ver, manifest.ArchRockspec)
	}
	return pkg, ver, nil
}

// RootText selects t and fetches its rockspec text.
func (r *Resolver) RootText(ctx context.Context, t Target) (string, version.Value, error) {
	pkg, ver, err := Select(r.index, t)
	if err != nil {
		return "", version.Value{}, err
	}
	body, err := r.source.Fetch(ctx, rockspec.FileName(pkg.Name, ver.String()))
	if err != nil {
		return "", version.Value{}, errors.Wrap(errors.ErrCodeFetch, err, "fetch rockspec %s@%s", pkg.Name, ver)
	}
	return string(body), ver, nil
}

// Root selects t and fetches and parses its rockspec.
func (r *Resolver) Root(ctx context.Context, t Target) (*rockspec.Spec, error) {
	text, _, err := r.RootText(ctx, t)
	if err != nil {
		return nil, err
	}
	return rockspec.Parse(ctx, text)
}
