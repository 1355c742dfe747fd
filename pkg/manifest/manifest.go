// Package manifest models a rocks server manifest: the index of every
// package the server publishes, its versions and the architecture tags
// available for each version.
//
// Versions are partitioned per package into a semantic set (strict
// major.minor.patch keys) and an ordinary set (everything else, including
// the rolling "scm" main branch). [Package.VersionByRule] resolves a
// dependency rule against those sets.
package manifest

import (
	"cmp"
	"context"
	"slices"
	"sort"

	"github.com/agext/levenshtein"

	"github.com/matzehuels/rocks-admin/pkg/errors"
	"github.com/matzehuels/rocks-admin/pkg/luatable"
)

// FileName is the server path of the manifest document.
const FileName = "manifest"

// Suggestion defaults for [Manifest.Suggest].
const (
	DefaultSuggestions = 3
	DefaultCutoff      = 0.6
)

// Manifest is the parsed index of a rocks server.
type Manifest struct {
	Commands map[string]any // Opaque "commands" table
	Modules  map[string]any // Opaque "modules" table
	Packages []*Package     // Sorted by name, unique
}

// Parse evaluates a manifest document and builds the index.
func Parse(ctx context.Context, content string) (*Manifest, error) {
	doc, err := luatable.Parse(ctx, content, "commands", "modules", "repository")
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

// Build constructs a Manifest from an evaluated document. The repository
// table maps package name to version key to a list of {arch = ...} entries.
func Build(doc luatable.Document) (*Manifest, error) {
	m := &Manifest{
		Commands: doc.Table("commands"),
		Modules:  doc.Table("modules"),
	}
	for name, releases := range doc.Table("repository") {
		versions := luatable.AsMap(releases)
		if versions == nil && releases != nil {
			return nil, errors.New(errors.ErrCodeParse, "repository entry %q is not a table", name)
		}
		tags := make(map[string][]string, len(versions))
		for raw, entries := range versions {
			for _, e := range luatable.AsList(entries) {
				if arch, ok := luatable.AsMap(e)["arch"].(string); ok {
					tags[raw] = append(tags[raw], arch)
				}
			}
			if _, ok := tags[raw]; !ok {
				tags[raw] = nil
			}
		}
		m.Packages = append(m.Packages, NewPackage(name, tags))
	}
	slices.SortFunc(m.Packages, func(a, b *Package) int { return cmp.Compare(a.Name, b.Name) })
	return m, nil
}

// Search finds a package by exact name.
func (m *Manifest) Search(name string) (*Package, bool) {
	i, found := slices.BinarySearchFunc(m.Packages, name, func(p *Package, n string) int {
		return cmp.Compare(p.Name, n)
	})
	if !found {
		return nil, false
	}
	return m.Packages[i], true
}

// Names returns the package names in index order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Packages))
	for i, p := range m.Packages {
		names[i] = p.Name
	}
	return names
}

// Suggest returns up to n package names whose similarity to name is at
// least cutoff, best match first.
func (m *Manifest) Suggest(name string, n int, cutoff float64) []string {
	type scored struct {
		name  string
		score float64
	}
	var hits []scored
	for _, p := range m.Packages {
		if s := levenshtein.Similarity(name, p.Name, nil); s >= cutoff {
			hits = append(hits, scored{p.Name, s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]string, 0, min(n, len(hits)))
	for _, h := range hits[:min(n, len(hits))] {
		out = append(out, h.name)
	}
	return out
}
