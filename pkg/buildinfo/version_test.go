package buildinfo

import (
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)

	Version, Commit = "dev", "none"
	if got := UserAgent("rocks-admin"); got != "rocks-admin/dev" {
		t.Errorf("UserAgent = %q", got)
	}

	Version, Commit = "v0.3.0", "abc1234"
	if got := UserAgent("rocks-admin"); got != "rocks-admin/v0.3.0 (abc1234)" {
		t.Errorf("UserAgent = %q", got)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.HasPrefix(Template(), "{{.Name}} version ") {
		t.Errorf("Template = %q", Template())
	}
	if !strings.Contains(String(), "commit: "+Commit) {
		t.Errorf("String = %q", String())
	}
}
