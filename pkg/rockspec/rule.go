package rockspec

import (
	"slices"
	"strings"

	"github.com/matzehuels/rocks-admin/pkg/version"
)

// Operator is a dependency-rule comparison operator.
type Operator string

// Supported operators.
const (
	OpEq          Operator = "=="
	OpAssign      Operator = "="
	OpLess        Operator = "<"
	OpLessEq      Operator = "<="
	OpGreater     Operator = ">"
	OpGreaterEq   Operator = ">="
	OpPessimistic Operator = "~>"
)

// Defaults applied to a rule that names only a package.
const (
	DefaultOperator = OpGreaterEq
	DefaultVersion  = "0.1.0"
)

var operators = []Operator{OpEq, OpAssign, OpLess, OpLessEq, OpGreater, OpGreaterEq, OpPessimistic}

// IsOperator reports whether s is a recognised operator token.
func IsOperator(s string) bool {
	return slices.Contains(operators, Operator(s))
}

// Rule is one parsed dependency constraint, e.g. "luasocket >= 3.0".
type Rule struct {
	Name       string   // Target package name
	Op         Operator // Comparison operator
	Version    string   // Reference version text, trailing commas stripped
	Qualifiers []string // Remaining tokens, order preserved, not interpreted
}

// ParseRule parses a dependency line.
//
//   - "name" gets the defaults ">= 0.1.0".
//   - "name ver" is an exact match.
//   - "name op ver extra..." when op is an operator.
//   - "name ver extra..." otherwise: ver is matched exactly and every token
//     after the name is kept as a qualifier so nothing is lost.
func ParseRule(line string) Rule {
	parts := strings.Fields(line)
	switch {
	case len(parts) == 0:
		return Rule{Op: DefaultOperator, Version: DefaultVersion}
	case len(parts) == 1:
		return Rule{Name: parts[0], Op: DefaultOperator, Version: DefaultVersion}
	case len(parts) == 2:
		return newRule(parts[0], OpEq, parts[1])
	case !IsOperator(parts[1]):
		return newRule(parts[0], OpEq, parts[1], parts[1:]...)
	default:
		return newRule(parts[0], Operator(parts[1]), parts[2], parts[3:]...)
	}
}

func newRule(name string, op Operator, ver string, qualifiers ...string) Rule {
	r := Rule{Name: name, Op: op, Version: strings.Trim(ver, ",")}
	if len(qualifiers) > 0 {
		r.Qualifiers = slices.Clone(qualifiers)
	}
	return r
}

// Reference parses the rule's reference version.
func (r Rule) Reference() version.Value {
	return version.Parse(r.Version)
}

// String renders "name op version" followed by any qualifiers.
func (r Rule) String() string {
	s := r.Name + " " + string(r.Op) + " " + r.Version
	if len(r.Qualifiers) > 0 {
		s += " " + strings.Join(r.Qualifiers, " ")
	}
	return s
}
