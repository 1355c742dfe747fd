package deptree

import (
	"context"
	"iter"
	"maps"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/rocks-admin/pkg/errors"
	"github.com/matzehuels/rocks-admin/pkg/manifest"
	"github.com/matzehuels/rocks-admin/pkg/observability"
	"github.com/matzehuels/rocks-admin/pkg/rockspec"
	"github.com/matzehuels/rocks-admin/pkg/server"
	"github.com/matzehuels/rocks-admin/pkg/version"
)

// Defaults applied by [Options.WithDefaults].
const (
	DefaultMaxDepth = 50
	DefaultMemoSize = 256
)

// DefaultExclude lists infrastructure packages that are never expanded.
var DefaultExclude = []string{"tarantool", "lua"}

// Source is the transport a walk fetches rockspecs from and probes
// artifacts with. [*server.Client] implements it.
type Source interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
}

// Options configures a [Resolver].
type Options struct {
	// Arch is the artifact kind checked for direct dependencies of the root.
	// Nested levels always check the rockspec itself.
	Arch string

	// Exclude lists packages reported as excluded and never expanded.
	// Nil means DefaultExclude; an empty non-nil slice excludes nothing.
	Exclude []string

	// MaxDepth stops expansion below this depth.
	MaxDepth int

	// MemoSize bounds the per-walk rockspec memo.
	MemoSize int
}

// WithDefaults returns a copy of o with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Arch == "" {
		o.Arch = manifest.ArchRockspec
	}
	if o.Exclude == nil {
		o.Exclude = slices.Clone(DefaultExclude)
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MemoSize <= 0 {
		o.MemoSize = DefaultMemoSize
	}
	return o
}

// Resolver walks dependency trees against one manifest. It holds no
// mutable state and may be shared by concurrent walks.
type Resolver struct {
	source Source
	index  *manifest.Manifest
	opts   Options
}

// New creates a Resolver.
func New(source Source, index *manifest.Manifest, opts Options) *Resolver {
	return &Resolver{source: source, index: index, opts: opts.WithDefaults()}
}

// Options returns the effective options.
func (r *Resolver) Options() Options { return r.opts }

// specResult is a memoized rockspec fetch.
type specResult struct {
	spec   *rockspec.Spec
	status Status
	err    error
}

// walk is the state of one traversal.
type walk struct {
	*Resolver
	memo  *lru.Cache[string, specResult]
	count int
}

// Walk lazily evaluates the dependency closure of spec. The only error the
// sequence yields is ctx's, after which it stops.
func (r *Resolver) Walk(ctx context.Context, spec *rockspec.Spec) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		memo, err := lru.New[string, specResult](r.opts.MemoSize)
		if err != nil {
			yield(Event{}, errors.Wrap(errors.ErrCodeInternal, err, "create rockspec memo"))
			return
		}
		w := &walk{Resolver: r, memo: memo}

		hooks := observability.Resolve()
		hooks.OnWalkStart(ctx, spec.Package, spec.Version)
		start := time.Now()

		exclude := make(map[string]bool, len(r.opts.Exclude))
		for _, name := range r.opts.Exclude {
			exclude[name] = true
		}
		ancestors := map[string]bool{spec.Package: true}

		_, err = w.expand(ctx, spec, 1, r.opts.Arch, exclude, ancestors, yield)
		hooks.OnWalkComplete(ctx, spec.Package, spec.Version, w.count, time.Since(start), err)
	}
}

// expand yields one event per rule of spec and recurses into resolved
// dependencies. It returns false once the consumer stops or ctx ends.
func (w *walk) expand(
	ctx context.Context,
	spec *rockspec.Spec,
	depth int,
	arch string,
	exclude, ancestors map[string]bool,
	yield func(Event, error) bool,
) (bool, error) {
	exclude = maps.Clone(exclude)

	for _, rule := range spec.Rules {
		if err := ctx.Err(); err != nil {
			yield(Event{}, err)
			return false, err
		}

		ev, child := w.evaluate(ctx, spec, rule, depth, arch, exclude, ancestors)
		w.count++
		observability.Resolve().OnNode(ctx, depth, rule.Name, string(ev.Status))
		if !yield(ev, nil) {
			return false, nil
		}
		if child == nil {
			continue
		}

		branch := maps.Clone(ancestors)
		branch[rule.Name] = true
		if ok, err := w.expand(ctx, child, depth+1, manifest.ArchRockspec, exclude, branch, yield); !ok {
			return false, err
		}
	}
	return true, nil
}

// evaluate classifies one rule. The returned spec is non-nil when the
// dependency should be expanded.
func (w *walk) evaluate(
	ctx context.Context,
	parent *rockspec.Spec,
	rule rockspec.Rule,
	depth int,
	arch string,
	exclude, ancestors map[string]bool,
) (Event, *rockspec.Spec) {
	ev := Event{Depth: depth, Parent: parent.Package, Rule: rule, Arch: arch}

	switch {
	case exclude[rule.Name]:
		ev.Status = StatusExcluded
		return ev, nil
	case rule.Name == parent.Package:
		ev.Status = StatusSelfCycle
		return ev, nil
	case ancestors[rule.Name]:
		ev.Status = StatusCycle
		return ev, nil
	}

	pkg, ok := w.index.Search(rule.Name)
	if !ok {
		ev.Status = StatusPackageNotFound
		return ev, nil
	}
	ver, ok := pkg.VersionByRule(rule)
	if !ok {
		ev.Status = StatusVersionNotFound
		return ev, nil
	}
	ev.Version = ver
	ev.InManifest = pkg.HasArch(ver, arch)
	ev.FileExists = w.source.Exists(ctx, server.ArtifactName(pkg.Name, ver.String(), arch))

	res := w.fetchSpec(ctx, pkg.Name, ver)
	ev.Err = res.err
	if res.spec == nil {
		ev.Status = res.status
		return ev, nil
	}
	if depth >= w.opts.MaxDepth {
		ev.Status = StatusDepthLimit
		return ev, nil
	}
	ev.Status = StatusResolved
	return ev, res.spec
}

func (w *walk) fetchSpec(ctx context.Context, name string, ver version.Value) specResult {
	path := rockspec.FileName(name, ver.String())
	if res, ok := w.memo.Get(path); ok {
		observability.Cache().OnCacheHit(ctx, "rockspec")
		return res
	}
	observability.Cache().OnCacheMiss(ctx, "rockspec")

	var res specResult
	body, err := w.source.Fetch(ctx, path)
	if err != nil {
		res = specResult{status: StatusSpecMissing, err: err}
	} else if spec, err := rockspec.Parse(ctx, string(body)); err != nil {
		res = specResult{status: StatusSpecInvalid, err: err}
	} else {
		res = specResult{spec: spec, status: StatusResolved}
	}

	// A cancelled request says nothing about the rockspec.
	if ctx.Err() == nil {
		w.memo.Add(path, res)
		observability.Cache().OnCacheSet(ctx, "rockspec", len(body))
	}
	return res
}
