package version

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/rocks-admin/pkg/errors"
)

// Kind distinguishes the two version variants.
type Kind int

const (
	// Ordinary is an opaque tag compared lexically (e.g. "scm-1", "dev-1").
	Ordinary Kind = iota
	// Semantic is a major.minor.patch version with optional pre-release and build.
	Semantic
)

func (k Kind) String() string {
	if k == Semantic {
		return "semantic"
	}
	return "ordinary"
}

// MainPrefix marks ordinary tags that track the rolling main branch.
const MainPrefix = "scm"

// Default tokens used to seed pre-release and build identifiers.
const (
	DefaultPrereleaseToken = "rc"
	DefaultBuildToken      = "build"
)

// Value is an immutable version identifier.
//
// The zero Value is an empty ordinary tag.
type Value struct {
	raw string
	sem *semver.Version // nil for Ordinary
}

// Parse converts text into a Value.
//
//   - "0" is the ordinary tag "scm-1".
//   - Empty text, or text not starting with a digit, is an ordinary tag.
//   - Otherwise a missing "-N" revision is normalized to "-1" and the result
//     is parsed as a semantic version, falling back to an ordinary tag.
//
// The raw text of the result is the normalized text.
func Parse(text string) Value {
	if text == "0" {
		text = "scm-1"
	}
	if text == "" || text[0] < '0' || text[0] > '9' {
		return NewOrdinary(text)
	}
	if !strings.Contains(text, "-") {
		text += "-1"
	}
	sv, err := semver.NewVersion(text)
	if err != nil {
		return NewOrdinary(text)
	}
	return Value{raw: text, sem: sv}
}

// ParseStrict reports whether raw is a strict major.minor.patch semantic
// version and returns it as a Semantic Value with raw preserved verbatim.
// Manifest keys are partitioned with this check.
func ParseStrict(raw string) (Value, bool) {
	if raw == "" {
		return Value{}, false
	}
	sv, err := semver.StrictNewVersion(raw)
	if err != nil {
		return Value{}, false
	}
	return Value{raw: raw, sem: sv}, true
}

// NewOrdinary returns an ordinary tag with the given raw text.
func NewOrdinary(raw string) Value {
	return Value{raw: raw}
}

// NewSemantic builds a semantic Value from its components.
func NewSemantic(major, minor, patch uint64, prerelease, build string) Value {
	sv := semver.New(major, minor, patch, prerelease, build)
	return Value{raw: sv.String(), sem: sv}
}

// Kind returns the variant of v.
func (v Value) Kind() Kind {
	if v.sem != nil {
		return Semantic
	}
	return Ordinary
}

// IsSemantic reports whether v is a semantic version.
func (v Value) IsSemantic() bool { return v.sem != nil }

// IsZero reports whether v is the zero Value.
func (v Value) IsZero() bool { return v.raw == "" && v.sem == nil }

// IsMain reports whether v is an ordinary tag on the rolling main branch.
func (v Value) IsMain() bool {
	return v.sem == nil && strings.HasPrefix(v.raw, MainPrefix)
}

// String returns the raw text of v.
func (v Value) String() string { return v.raw }

// Major returns the major component, or 0 for ordinary tags.
func (v Value) Major() uint64 {
	if v.sem == nil {
		return 0
	}
	return v.sem.Major()
}

// Minor returns the minor component, or 0 for ordinary tags.
func (v Value) Minor() uint64 {
	if v.sem == nil {
		return 0
	}
	return v.sem.Minor()
}

// Patch returns the patch component, or 0 for ordinary tags.
func (v Value) Patch() uint64 {
	if v.sem == nil {
		return 0
	}
	return v.sem.Patch()
}

// Prerelease returns the pre-release identifier (the rockspec revision for
// parsed rocks versions), or "" when absent.
func (v Value) Prerelease() string {
	if v.sem == nil {
		return ""
	}
	return v.sem.Prerelease()
}

// Build returns the build metadata, or "" when absent.
func (v Value) Build() string {
	if v.sem == nil {
		return ""
	}
	return v.sem.Metadata()
}

// Core renders major.minor.patch. Ordinary tags render their raw text.
func (v Value) Core() string {
	if v.sem == nil {
		return v.raw
	}
	return strconv.FormatUint(v.Major(), 10) + "." +
		strconv.FormatUint(v.Minor(), 10) + "." +
		strconv.FormatUint(v.Patch(), 10)
}

// Compare returns -1, 0 or +1 ordering v against o.
//
// Main-branch tags rank above everything else. Semantic versions rank above
// the remaining ordinary tags and follow semantic-version precedence, with
// build metadata as a final lexical tie-break. Two ordinary tags of the same
// class compare lexically.
func (v Value) Compare(o Value) int {
	switch {
	case v.sem != nil && o.sem != nil:
		if c := v.sem.Compare(o.sem); c != 0 {
			return c
		}
		return strings.Compare(v.sem.Metadata(), o.sem.Metadata())
	case v.sem == nil && o.sem == nil:
		vm, om := v.IsMain(), o.IsMain()
		if vm != om {
			if vm {
				return 1
			}
			return -1
		}
		return strings.Compare(v.raw, o.raw)
	case v.sem == nil:
		if v.IsMain() {
			return 1
		}
		return -1
	default:
		if o.IsMain() {
			return -1
		}
		return 1
	}
}

// CompareCore compares only major.minor.patch of two semantic versions,
// ignoring revision and build. Ordinary tags fall back to [Value.Compare].
func (v Value) CompareCore(o Value) int {
	if v.sem == nil || o.sem == nil {
		return v.Compare(o)
	}
	for _, p := range [][2]uint64{
		{v.Major(), o.Major()},
		{v.Minor(), o.Minor()},
		{v.Patch(), o.Patch()},
	} {
		switch {
		case p[0] < p[1]:
			return -1
		case p[0] > p[1]:
			return 1
		}
	}
	return 0
}

// CompareString parses s with [Parse] and compares v against the result.
func (v Value) CompareString(s string) int { return v.Compare(Parse(s)) }

// Equal reports whether v and o have the same identity.
func (v Value) Equal(o Value) bool { return v.Compare(o) == 0 }

// Less reports whether v sorts before o.
func (v Value) Less(o Value) bool { return v.Compare(o) < 0 }

// Compare is the package-level form of [Value.Compare], usable with slices.SortFunc.
func Compare(a, b Value) int { return a.Compare(b) }

// BumpMajor returns major+1.0.0.
func (v Value) BumpMajor() (Value, error) {
	if err := v.requireSemantic("bump major"); err != nil {
		return Value{}, err
	}
	return NewSemantic(v.Major()+1, 0, 0, "", ""), nil
}

// BumpMinor returns major.minor+1.0.
func (v Value) BumpMinor() (Value, error) {
	if err := v.requireSemantic("bump minor"); err != nil {
		return Value{}, err
	}
	return NewSemantic(v.Major(), v.Minor()+1, 0, "", ""), nil
}

// BumpPatch returns major.minor.patch+1.
func (v Value) BumpPatch() (Value, error) {
	if err := v.requireSemantic("bump patch"); err != nil {
		return Value{}, err
	}
	return NewSemantic(v.Major(), v.Minor(), v.Patch()+1, "", ""), nil
}

// BumpPrerelease increments the trailing number of the pre-release
// identifier. When there is none it is seeded from token ("rc" -> "rc.1",
// "" -> "1"). Build metadata is dropped.
func (v Value) BumpPrerelease(token string) (Value, error) {
	if err := v.requireSemantic("bump prerelease"); err != nil {
		return Value{}, err
	}
	pre := seed(v.Prerelease(), token)
	return NewSemantic(v.Major(), v.Minor(), v.Patch(), incrementString(pre), ""), nil
}

// BumpBuild increments the trailing number of the build metadata, seeding
// it from token when absent. The pre-release identifier is kept.
func (v Value) BumpBuild(token string) (Value, error) {
	if err := v.requireSemantic("bump build"); err != nil {
		return Value{}, err
	}
	build := seed(v.Build(), token)
	return NewSemantic(v.Major(), v.Minor(), v.Patch(), v.Prerelease(), incrementString(build)), nil
}

// ErrNotSemantic is the cause of contract violations raised by operations
// that only apply to semantic versions.
var ErrNotSemantic = errors.New(errors.ErrCodeContractViolation, "not a semantic version")

func (v Value) requireSemantic(op string) error {
	if v.sem == nil {
		return errors.Wrap(errors.ErrCodeContractViolation, ErrNotSemantic, "%s %q", op, v.raw)
	}
	return nil
}

func seed(current, token string) string {
	switch {
	case current != "":
		return current
	case token == "":
		return "0"
	default:
		return token + ".0"
	}
}

// incrementString increments the last run of digits in s, keeping the width
// of zero-padded runs ("rc.009" -> "rc.010"). Strings without digits are
// returned unchanged.
func incrementString(s string) string {
	end := len(s)
	for end > 0 && !isDigit(s[end-1]) {
		end--
	}
	if end == 0 {
		return s
	}
	start := end
	for start > 0 && isDigit(s[start-1]) {
		start--
	}
	n, err := strconv.ParseUint(s[start:end], 10, 64)
	if err != nil {
		return s
	}
	next := strconv.FormatUint(n+1, 10)
	return s[:max(end-len(next), start)] + next + s[end:]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
