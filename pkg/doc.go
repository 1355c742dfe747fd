// Package pkg provides the libraries behind rocks-admin, a diagnostic client
// for rocks servers.
//
// # Overview
//
// A rocks server publishes a manifest (every package, its versions and the
// artifact kinds uploaded for each) and one rockspec per version declaring
// the dependency rules of that version. rocks-admin answers two questions
// about such a server: which versions would a rule select, and does the
// whole dependency closure of a package resolve to artifacts that actually
// exist.
//
// # Architecture
//
//	rocks server (HTTP)
//	         ↓
//	    [server] package (fetch manifest, rockspecs, probe artifacts)
//	         ↓
//	    [manifest] package (index, per-package version sets, rule matching)
//	         ↓
//	    [deptree] package (lazy walk, cycle/exclusion handling, batch check)
//	         ↓
//	    text / JSON / DOT / SVG output, or the [api] HTTP service
//
// # Quick Start
//
// Walk the dependency tree of the latest version of a package:
//
//	client, _ := server.New("https://rocks.example.org")
//	m, _ := client.Manifest(ctx)
//
//	r := deptree.New(client, m, deptree.Options{})
//	spec, _ := r.Root(ctx, deptree.Target{Name: "http"})
//	for ev, err := range r.Walk(ctx, spec) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(strings.Repeat("\t", ev.Depth), ev)
//	}
//
// # Main Packages
//
// [version] - Version values (ordinary tags such as scm-1 and semantic
// versions such as 1.2.0-1) with a total order, and sorted version sets with
// closest-match lookup.
//
// [rockspec] - Dependency rules ("luasocket >= 3.0") and rockspec documents.
//
// [luatable] - Sandboxed evaluation of the Lua table documents used for both
// manifests and rockspecs.
//
// [manifest] - The package index: search, fuzzy suggestions and selection of
// a concrete version for a rule.
//
// [deptree] - The dependency resolver and its tree and batch-check helpers.
//
// [render/nodelink] - Graphviz export of a collected tree.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for HTTP, walk and memo events.
//
// [version]: https://pkg.go.dev/github.com/matzehuels/rocks-admin/pkg/version
// [rockspec]: https://pkg.go.dev/github.com/matzehuels/rocks-admin/pkg/rockspec
// [luatable]: https://pkg.go.dev/github.com/matzehuels/rocks-admin/pkg/luatable
// [manifest]: https://pkg.go.dev/github.com/matzehuels/rocks-admin/pkg/manifest
// [deptree]: https://pkg.go.dev/github.com/matzehuels/rocks-admin/pkg/deptree
// [server]: https://pkg.go.dev/github.com/matzehuels/rocks-admin/pkg/server
// [api]: https://pkg.go.dev/github.com/matzehuels/rocks-admin/pkg/api
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/rocks-admin/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/rocks-admin/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/rocks-admin/pkg/observability
package pkg
