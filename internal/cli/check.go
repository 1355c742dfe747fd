package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rocks-admin/pkg/deptree"
	"github.com/matzehuels/rocks-admin/pkg/errors"
)

type checkOpts struct {
	workers   int
	checkArch string
	json      bool
}

// checkCommand creates the check command for batch dependency checks.
func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check <target>...",
		Short: "Check the dependency trees of several packages",
		Long: `Walk the dependency tree of every target in parallel and print one summary
line per target. The command fails when any target cannot be selected or any
rule of its tree fails to resolve.`,
		Example: `  rocks-admin check http luasocket@3.1.0-1
  rocks-admin check --workers 2 --json http`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "targets checked in parallel (default from config, 8)")
	cmd.Flags().StringVar(&opts.checkArch, "check-arch", "", "artifact arch probed for resolved rules")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the reports as JSON")
	return cmd
}

// checkJSON is the JSON form of a report.
type checkJSON struct {
	Target  string        `json:"target"`
	Version string        `json:"version,omitempty"`
	OK      bool          `json:"ok"`
	Stats   deptree.Stats `json:"stats"`
	Error   string        `json:"error,omitempty"`
	Tree    *deptree.Tree `json:"tree,omitempty"`
}

func (c *CLI) runCheck(cmd *cobra.Command, args []string, opts checkOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	targets := make([]deptree.Target, len(args))
	for i, arg := range args {
		t, err := deptree.ParseTarget(arg)
		if err != nil {
			return err
		}
		targets[i] = t
	}

	resolveOpts := c.cfg.resolveOptions()
	if opts.checkArch != "" {
		resolveOpts.Arch = opts.checkArch
	}
	workers := opts.workers
	if workers <= 0 {
		workers = c.cfg.Workers
	}

	client, err := c.client()
	if err != nil {
		return err
	}
	r, _, err := c.resolver(ctx, client, resolveOpts)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	reports, err := r.Check(ctx, targets, workers)
	if err != nil {
		return err
	}
	prog.done("Checked " + pluralize(len(reports), "target"))

	out := cmd.OutOrStdout()
	failed := 0
	for _, rep := range reports {
		if !rep.OK() {
			failed++
		}
	}

	if opts.json {
		items := make([]checkJSON, len(reports))
		for i, rep := range reports {
			items[i] = checkJSON{
				Target:  rep.Target.String(),
				Version: rep.Version,
				OK:      rep.OK(),
				Stats:   rep.Stats,
				Tree:    rep.Tree,
			}
			if rep.Err != nil {
				items[i].Error = errorMessage(rep.Err)
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			return err
		}
	} else {
		for _, rep := range reports {
			printReport(out, rep)
		}
	}

	if failed > 0 {
		return errors.New(errors.ErrCodeNotFound, "%d of %s failed", failed, pluralize(len(reports), "target"))
	}
	return nil
}
