package rockspec

import (
	"slices"
	"testing"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		line       string
		name       string
		op         Operator
		version    string
		qualifiers []string
	}{
		{"foo", "foo", OpGreaterEq, "0.1.0", nil},
		{"foo 1.2.3", "foo", OpEq, "1.2.3", nil},
		{"foo >= 1.0", "foo", OpGreaterEq, "1.0", nil},
		{"foo ~> 2.1", "foo", OpPessimistic, "2.1", nil},
		{"foo = 1.0-1", "foo", OpAssign, "1.0-1", nil},
		{"luafilesystem >= 1.5, < 2", "luafilesystem", OpGreaterEq, "1.5", []string{"<", "2"}},
		{"foo 1.0 bar baz", "foo", OpEq, "1.0", []string{"1.0", "bar", "baz"}},
		{"  foo   <   3  ", "foo", OpLess, "3", nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			r := ParseRule(tt.line)
			if r.Name != tt.name || r.Op != tt.op || r.Version != tt.version {
				t.Errorf("ParseRule(%q) = %+v", tt.line, r)
			}
			if !slices.Equal(r.Qualifiers, tt.qualifiers) {
				t.Errorf("Qualifiers = %v, want %v", r.Qualifiers, tt.qualifiers)
			}
		})
	}
}

func TestRuleString(t *testing.T) {
	if got := ParseRule("foo").String(); got != "foo >= 0.1.0" {
		t.Errorf("String() = %q", got)
	}
	if got := ParseRule("a >= 1.5, < 2").String(); got != "a >= 1.5 < 2" {
		t.Errorf("String() = %q", got)
	}
}

func TestRuleReference(t *testing.T) {
	ref := ParseRule("foo >= 1.0").Reference()
	if !ref.IsSemantic() || ref.String() != "1.0-1" {
		t.Errorf("Reference() = %v", ref)
	}
	if ParseRule("foo == scm-1").Reference().IsSemantic() {
		t.Error("scm reference should be ordinary")
	}
}

func TestIsOperator(t *testing.T) {
	for _, op := range []string{"=", "==", "<", "<=", ">", ">=", "~>"} {
		if !IsOperator(op) {
			t.Errorf("IsOperator(%q) = false", op)
		}
	}
	for _, op := range []string{"", "!=", "^", "~"} {
		if IsOperator(op) {
			t.Errorf("IsOperator(%q) = true", op)
		}
	}
}
