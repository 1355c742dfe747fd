package manifest

import (
	"github.com/matzehuels/rocks-admin/pkg/rockspec"
	"github.com/matzehuels/rocks-admin/pkg/version"
)

// VersionByRule selects the concrete version of p that satisfies r.
//
//	==, =  exact match
//	<      closest version below the reference
//	<=     the reference itself or the closest version below
//	>      latest version strictly greater than the reference
//	>=     latest version greater than or equal to the reference
//	~>     greatest semantic version in the reference's compatible range
func (p *Package) VersionByRule(r rockspec.Rule) (version.Value, bool) {
	ref := r.Reference()
	switch r.Op {
	case rockspec.OpEq, rockspec.OpAssign:
		return p.Version(r.Version)
	case rockspec.OpLess:
		return p.setFor(ref).ClosestBelow(ref)
	case rockspec.OpLessEq:
		return p.setFor(ref).ClosestBelowOrEqual(ref)
	case rockspec.OpGreater:
		return p.latestAbove(ref, false)
	case rockspec.OpGreaterEq:
		return p.latestAbove(ref, true)
	case rockspec.OpPessimistic:
		return p.pessimistic(ref)
	default:
		return version.Value{}, false
	}
}

func (p *Package) setFor(ref version.Value) *version.Set {
	if ref.IsSemantic() {
		return p.Semantic
	}
	return p.Ordinary
}

// latestAbove returns the latest semantic version when it satisfies the
// bound, otherwise the latest main version, which ranks above every
// semantic version. Ordinary references can only be satisfied by the main
// branch.
func (p *Package) latestAbove(ref version.Value, orEqual bool) (version.Value, bool) {
	satisfies := func(v version.Value) bool {
		c := v.Compare(ref)
		return c > 0 || (orEqual && c == 0)
	}
	if ref.IsSemantic() {
		if v, ok := p.LatestSemantic(); ok && satisfies(v) {
			return v, true
		}
	}
	if v, ok := p.LatestMain(); ok && satisfies(v) {
		return v, true
	}
	return version.Value{}, false
}

// pessimistic implements "~>": the bound is the next major when the
// reference minor is 0, otherwise the next minor. The bound is compared on
// major.minor.patch only, so revisions of the bound release stay excluded.
// When nothing in range is published the reference itself is returned.
func (p *Package) pessimistic(ref version.Value) (version.Value, bool) {
	if !ref.IsSemantic() {
		return version.Value{}, false
	}
	bump := ref.BumpMinor
	if ref.Minor() == 0 {
		bump = ref.BumpMajor
	}
	bound, err := bump()
	if err != nil {
		return version.Value{}, false
	}

	best := ref
	for v := range p.Semantic.All() {
		if ref.Compare(v) <= 0 && v.CompareCore(bound) < 0 && v.Compare(best) > 0 {
			best = v
		}
	}
	return best, true
}
