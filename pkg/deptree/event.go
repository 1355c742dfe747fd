package deptree

import (
	"fmt"

	"github.com/package-url/packageurl-go"

	"github.com/matzehuels/rocks-admin/pkg/rockspec"
	"github.com/matzehuels/rocks-admin/pkg/version"
)

// Status is the outcome of evaluating one dependency rule.
type Status string

const (
	StatusExcluded        Status = "excluded"
	StatusSelfCycle       Status = "self-cycle"
	StatusCycle           Status = "cycle"
	StatusPackageNotFound Status = "package-not-found"
	StatusVersionNotFound Status = "version-not-found"
	StatusResolved        Status = "resolved"
	StatusSpecMissing     Status = "spec-missing"
	StatusSpecInvalid     Status = "spec-invalid"
	StatusDepthLimit      Status = "depth-limit"
)

// OK reports whether the rule is satisfied or intentionally not expanded.
func (s Status) OK() bool {
	switch s {
	case StatusExcluded, StatusSelfCycle, StatusCycle, StatusResolved, StatusDepthLimit:
		return true
	default:
		return false
	}
}

// Event is one evaluated dependency rule.
type Event struct {
	Depth      int           // 1 for direct dependencies of the root
	Parent     string        // Package whose rockspec declared the rule
	Rule       rockspec.Rule // The rule as declared
	Status     Status
	Version    version.Value // Selected version; zero before resolution
	Arch       string        // Artifact kind checked for this rule
	InManifest bool          // Arch declared for Version in the manifest
	FileExists bool          // Artifact answered the existence probe
	Err        error         // Fetch or parse failure behind spec-missing/spec-invalid
}

// Resolved reports whether a concrete version was selected.
func (e Event) Resolved() bool { return !e.Version.IsZero() }

// PURL returns the package URL of the dependency, versioned once resolved.
func (e Event) PURL() string {
	return PURL(e.Rule.Name, e.Version.String())
}

// PURL returns "pkg:luarocks/name[@version]".
func PURL(name, ver string) string {
	return packageurl.NewPackageURL("luarocks", "", name, ver, nil, "").ToString()
}

// Mark glyphs used in [Event.Summary].
const (
	Mark   = "✓"
	Unmark = "x"
)

func mark(ok bool) string {
	if ok {
		return Mark
	}
	return Unmark
}

// Summary renders the bracketed annotation printed after the rule.
func (e Event) Summary() string {
	switch e.Status {
	case StatusExcluded:
		return fmt.Sprintf("[%s, excluded]", Mark)
	case StatusSelfCycle:
		return fmt.Sprintf("[%s, cyclicdep]", Mark)
	case StatusCycle:
		return fmt.Sprintf("[%s, cyclicdep via ancestor]", Mark)
	case StatusPackageNotFound:
		return fmt.Sprintf("[%s, not found in manifest]", Unmark)
	case StatusVersionNotFound:
		return fmt.Sprintf("[%s, version not found]", Unmark)
	case StatusSpecMissing:
		return fmt.Sprintf("[%s %s, has rockspec in manifest, but file not found]", e.Version, Unmark)
	case StatusSpecInvalid:
		return fmt.Sprintf("[%s %s, rockspec is invalid]", e.Version, Unmark)
	case StatusDepthLimit:
		return fmt.Sprintf("[%s %s: manifest(%s)/file(%s), depth limit ]",
			e.Version, e.Arch, mark(e.InManifest), mark(e.FileExists))
	default:
		return fmt.Sprintf("[%s %s: manifest(%s)/file(%s) ]",
			e.Version, e.Arch, mark(e.InManifest), mark(e.FileExists))
	}
}

// String renders "rule [summary]".
func (e Event) String() string {
	return e.Rule.String() + " " + e.Summary()
}
