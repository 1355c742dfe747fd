package manifest

import (
	"slices"

	"github.com/matzehuels/rocks-admin/pkg/version"
)

// Well-known architecture tags.
const (
	ArchRockspec = "rockspec" // bare specification text
	ArchSource   = "src"      // source rock
	ArchAll      = "all"      // pure-Lua binary rock
)

// Package is one package of a manifest: its name, its semantic and
// ordinary version sets, and the architecture tags published for every
// version. A Package is read-only after construction.
type Package struct {
	Name     string
	Semantic *version.Set
	Ordinary *version.Set

	arches map[string][]string // raw version -> sorted tags
}

// NewPackage builds a Package from raw version keys mapped to their
// architecture tags. Keys that are strict major.minor.patch versions go to
// the semantic set; everything else is an ordinary tag.
func NewPackage(name string, releases map[string][]string) *Package {
	var sem, ord []version.Value
	arches := make(map[string][]string, len(releases))
	for raw, tags := range releases {
		if v, ok := version.ParseStrict(raw); ok {
			sem = append(sem, v)
		} else {
			ord = append(ord, version.NewOrdinary(raw))
		}
		sorted := slices.Clone(tags)
		slices.Sort(sorted)
		arches[raw] = slices.Compact(sorted)
	}
	return &Package{
		Name:     name,
		Semantic: version.NewSet(sem...),
		Ordinary: version.NewSet(ord...),
		arches:   arches,
	}
}

// Versions returns ordinary versions followed by semantic versions, each
// ascending.
func (p *Package) Versions() []version.Value {
	return append(p.Ordinary.Values(), p.Semantic.Values()...)
}

// Arches returns the architecture tags published for v.
func (p *Package) Arches(v version.Value) []string {
	return slices.Clone(p.arches[v.String()])
}

// HasArch reports whether kind is published for v.
func (p *Package) HasArch(v version.Value, kind string) bool {
	_, ok := p.Arch(v, kind)
	return ok
}

// Arch returns the tag matching kind for v.
func (p *Package) Arch(v version.Value, kind string) (string, bool) {
	tags := p.arches[v.String()]
	if i, found := slices.BinarySearch(tags, kind); found {
		return tags[i], true
	}
	return "", false
}

// LatestMain returns the newest ordinary version on the rolling main branch.
func (p *Package) LatestMain() (version.Value, bool) {
	for v := range p.Ordinary.Backward() {
		if v.IsMain() {
			return v, true
		}
	}
	return version.Value{}, false
}

// LatestSemantic returns the greatest semantic version.
func (p *Package) LatestSemantic() (version.Value, bool) {
	return p.Semantic.Max()
}

// Latest prefers the main branch and falls back to the greatest semantic
// version.
func (p *Package) Latest() (version.Value, bool) {
	if v, ok := p.LatestMain(); ok {
		return v, true
	}
	return p.LatestSemantic()
}

// Version looks up an exact version. A verbatim manifest key matches first;
// otherwise text without a revision is matched as revision 1. Semantic
// references missing from the semantic set are retried against the
// ordinary set by their normalized text, since manifests keep non-strict
// keys such as "1.0-1" as ordinary tags.
func (p *Package) Version(text string) (version.Value, bool) {
	if v, ok := version.ParseStrict(text); ok {
		if found, ok := p.Semantic.EqualTo(v); ok {
			return found, true
		}
	}
	ref := version.Parse(text)
	if ref.IsSemantic() {
		if v, ok := p.Semantic.EqualTo(ref); ok {
			return v, true
		}
	}
	return p.Ordinary.EqualTo(version.NewOrdinary(ref.String()))
}
