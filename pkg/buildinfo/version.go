// Package buildinfo holds version information injected at link time:
//
//	go build -ldflags "-X github.com/matzehuels/rocks-admin/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/rocks-admin/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/rocks-admin/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/rocks-admin
package buildinfo

import "fmt"

var (
	Version = "dev"     // Release tag, e.g. "v0.3.0"
	Commit  = "none"    // Git commit SHA
	Date    = "unknown" // Build timestamp (RFC 3339)
)

// String returns the build information, one field per line.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return "{{.Name}} version " + Version + "\ncommit: " + Commit + "\nbuilt: " + Date + "\n"
}

// UserAgent returns the User-Agent sent to rocks servers, e.g.
// "rocks-admin/v0.3.0 (abc1234)". Development builds omit the commit.
func UserAgent(app string) string {
	if Commit == "none" || Commit == "" {
		return app + "/" + Version
	}
	return fmt.Sprintf("%s/%s (%s)", app, Version, Commit)
}
