// Package version models the version identifiers published by a rocks server.
//
// A rocks manifest mixes two kinds of identifiers:
//
//   - Semantic versions such as "1.2.3-1", where the trailing "-N" is the
//     rockspec revision and is carried in the pre-release slot.
//   - Ordinary tags such as "scm-1" or "dev-1". Tags beginning with "scm"
//     denote the rolling main branch and rank above every numbered release.
//
// [Parse] is the single entry point for turning text into a [Value]. It never
// fails: text that is not a semantic version degrades to an ordinary tag.
// Comparisons between a [Value] and raw text go through [Value.CompareString],
// which parses explicitly.
//
// [Set] keeps values of one package sorted ascending and answers the
// nearest-below / nearest-above queries used by dependency rules.
//
// # Example
//
//	v := version.Parse("1.2")       // 1.2.0-1 (revision index 1)
//	next, _ := v.BumpMinor()        // 1.3.0
//	set := version.NewSet(version.Parse("1.0.0-1"), version.Parse("1.2.0-1"))
//	below, ok := set.ClosestBelow(version.Parse("1.1.0"))
package version
