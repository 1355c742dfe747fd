// Package deptree walks the dependency closure of a rockspec against a
// manifest.
//
// [Resolver.Walk] is a lazy, depth-first sequence of [Event] values, one per
// dependency rule in declaration order. Every outcome is an event: missing
// packages, unsatisfiable rules, unfetchable or unparsable rockspecs and
// cycles annotate the branch and the walk continues with its siblings. The
// sequence only yields an error when ctx is cancelled.
//
// A branch stops at:
//   - a package on the exclusion list (by default "tarantool" and "lua")
//   - a self-dependency, or a package already expanded on the same branch
//   - any lookup or fetch failure
//   - the depth limit
//
// [Collect] folds a walk into a [Tree] for structured output and [Check]
// walks several packages in parallel.
package deptree
