// Package server talks to a rocks server: a static file tree holding the
// manifest, one rockspec per published version and the rock artifacts.
//
// Every call is a single request. There is no retry and no caching; a
// non-2xx response to a fetch is surfaced as a [*FetchError], and existence
// probes degrade every failure to false.
//
// Paths are relative to the configured root:
//
//	manifest                      the repository index
//	{name}-{version}.rockspec     a specification document
//	{name}-{version}.{arch}.rock  a source ("src") or pure-Lua ("all") rock
//	{name}-{version}.{arch}       any other artifact kind
package server
