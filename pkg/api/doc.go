// Package api serves a read-only JSON view of a rocks server.
//
// Every request fetches the manifest again; nothing is cached between
// requests.
//
//	GET /healthz
//	GET /packages
//	GET /packages/{name}
//	GET /packages/{name}/{version}/rockspec
//	GET /packages/{name}/{version}/deptree?arch=src
//
// {version} may be "latest", which selects the latest main version and
// falls back to the latest semantic version. Responses carry an
// X-Request-Id header.
package api
