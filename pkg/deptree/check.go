package deptree

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/rocks-admin/pkg/rockspec"
)

// DefaultWorkers bounds [Check] parallelism when workers <= 0.
const DefaultWorkers = 8

// Report is the outcome of checking one target.
type Report struct {
	Target  Target
	Version string
	Tree    *Tree
	Stats   Stats
	Err     error // Target could not be selected, fetched or parsed
}

// OK reports whether the target resolved and every rule of its tree passed.
func (r Report) OK() bool { return r.Err == nil && r.Stats.Failures == 0 }

// Check walks every target in parallel. Per-target failures are recorded
// in the reports, which keep the order of targets; the returned error is
// only set when ctx ends.
func (r *Resolver) Check(ctx context.Context, targets []Target, workers int) ([]Report, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	reports := make([]Report, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, t := range targets {
		g.Go(func() error {
			reports[i] = r.check(ctx, t)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}

func (r *Resolver) check(ctx context.Context, t Target) Report {
	rep := Report{Target: t}
	text, ver, err := r.RootText(ctx, t)
	if err != nil {
		rep.Err = err
		return rep
	}
	rep.Version = ver.String()

	spec, err := rockspec.Parse(ctx, text)
	if err != nil {
		rep.Err = err
		return rep
	}
	tree, err := Collect(spec.Package, rep.Version, r.Walk(ctx, spec))
	if err != nil {
		rep.Err = err
		return rep
	}
	rep.Tree = tree
	rep.Stats = tree.Stats()
	return rep
}
