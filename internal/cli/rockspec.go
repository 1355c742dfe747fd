package cli

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rocks-admin/pkg/deptree"
	"github.com/matzehuels/rocks-admin/pkg/errors"
	"github.com/matzehuels/rocks-admin/pkg/manifest"
	"github.com/matzehuels/rocks-admin/pkg/rockspec"
	"github.com/matzehuels/rocks-admin/pkg/server"
)

// rockspecCommand creates the rockspec command group.
func (c *CLI) rockspecCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rockspec",
		Short: "Inspect a package rockspec",
		Long: `Inspect the rockspec of a package.

A target is either a local rockspec file, a package name (latest main version,
else the latest semantic version) or name@version. The selected version must
publish a rockspec.`,
	}

	cmd.AddCommand(c.rockspecShowCommand())
	cmd.AddCommand(c.rockspecDeptreeCommand())
	return cmd
}

// rockspecShowCommand prints the raw rockspec text.
func (c *CLI) rockspecShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <target>",
		Short: "Print the raw rockspec",
		Example: `  rocks-admin rockspec show http
  rocks-admin rockspec show http@2.1.0-1
  rocks-admin rockspec show ./http-scm-1.rockspec`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if isLocalFile(args[0]) {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			client, err := c.client()
			if err != nil {
				return err
			}
			r, m, err := c.resolver(ctx, client, c.cfg.resolveOptions())
			if err != nil {
				return err
			}
			t, err := deptree.ParseTarget(args[0])
			if err != nil {
				return err
			}
			text, _, err := r.RootText(ctx, t)
			if err != nil {
				printSuggestions(cmd.ErrOrStderr(), m, err, t.Name)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

type deptreeOpts struct {
	checkArch string
	format    string
	output    string
	detailed  bool
}

// rockspecDeptreeCommand walks the dependency tree of a target.
func (c *CLI) rockspecDeptreeCommand() *cobra.Command {
	var opts deptreeOpts

	cmd := &cobra.Command{
		Use:   "deptree <target>",
		Short: "Print the annotated dependency tree",
		Long: `Walk the dependencies of a rockspec recursively and annotate every rule
with its resolution status: the selected version, whether the checked arch is
listed in the manifest and whether the artifact file exists on the server.

Excluded packages (default: tarantool, lua) are reported but not expanded.
Cycles are reported once and never followed.`,
		Example: `  rocks-admin rockspec deptree http
  rocks-admin rockspec deptree http@scm-1 --check-arch all
  rocks-admin rockspec deptree http --format svg -o http.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return c.runDeptree(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.checkArch, "check-arch", "", "artifact arch probed for resolved rules (default from config, rockspec)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format: text, json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show arch and artifact flags in diagram labels")
	return cmd
}

func (c *CLI) runDeptree(cmd *cobra.Command, target string, opts deptreeOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	resolveOpts := c.cfg.resolveOptions()
	if opts.checkArch != "" {
		resolveOpts.Arch = opts.checkArch
	}

	client, err := c.client()
	if err != nil {
		return err
	}
	r, m, err := c.resolver(ctx, client, resolveOpts)
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	spec, err := rootSpec(ctx, r, target)
	if err != nil {
		printSuggestions(errOut, m, err, target)
		return err
	}

	printInfo(errOut, "%s %s", StyleTitle.Render(spec.Package), StyleHighlight.Render(spec.Version))
	if spec.Description.Summary != "" {
		printDetail(errOut, "%s", spec.Description.Summary)
	}

	prog := newProgress(logger)
	var tally walkTally
	if opts.format == formatText {
		out := cmd.OutOrStdout()
		if opts.output != "" {
			f, err := os.Create(opts.output)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		for ev, err := range tally.count(r.Walk(ctx, spec)) {
			if err != nil {
				return err
			}
			printEvent(out, ev)
		}
		tally.report(errOut, prog, resolveOpts.MaxDepth)
		if opts.output != "" {
			printFile(errOut, opts.output)
		}
		return nil
	}

	tree, err := deptree.Collect(spec.Package, spec.Version, tally.count(r.Walk(ctx, spec)))
	if err != nil {
		return err
	}
	tally.report(errOut, prog, resolveOpts.MaxDepth)

	data, err := renderTree(ctx, tree, opts.format, opts.detailed)
	if err != nil {
		return err
	}
	if err := writeOutput(ctx, cmd.OutOrStdout(), opts.output, data); err != nil {
		return err
	}
	if opts.output != "" {
		printFile(errOut, opts.output)
	}
	return nil
}

// walkTally counts walk events as they pass through.
type walkTally struct {
	rules, failed, truncated int
}

func (t *walkTally) count(events iter.Seq2[deptree.Event, error]) iter.Seq2[deptree.Event, error] {
	return func(yield func(deptree.Event, error) bool) {
		for ev, err := range events {
			if err == nil {
				t.rules++
				if !ev.Status.OK() {
					t.failed++
				}
				if ev.Status == deptree.StatusDepthLimit {
					t.truncated++
				}
			}
			if !yield(ev, err) {
				return
			}
		}
	}
}

func (t *walkTally) report(w io.Writer, prog *progress, maxDepth int) {
	prog.done(fmt.Sprintf("Walked %s, %d failed", pluralize(t.rules, "rule"), t.failed))
	if t.truncated > 0 {
		printWarning(w, "%s not expanded: depth limit %d reached", pluralize(t.truncated, "rule"), maxDepth)
	}
}

// resolver fetches the manifest and builds a resolver backed by client.
func (c *CLI) resolver(ctx context.Context, client *server.Client, opts deptree.Options) (*deptree.Resolver, *manifest.Manifest, error) {
	m, err := c.fetchManifest(ctx, client)
	if err != nil {
		return nil, nil, err
	}
	return deptree.New(client, m, opts), m, nil
}

// rootSpec loads the root rockspec from a local file or from the server.
func rootSpec(ctx context.Context, r *deptree.Resolver, target string) (*rockspec.Spec, error) {
	if isLocalFile(target) {
		return rockspec.Open(ctx, target)
	}
	t, err := deptree.ParseTarget(target)
	if err != nil {
		return nil, err
	}
	return r.Root(ctx, t)
}

// isLocalFile reports whether target names an existing regular file.
func isLocalFile(target string) bool {
	fi, err := os.Stat(target)
	return err == nil && fi.Mode().IsRegular()
}

// printSuggestions prints close manifest matches after a package-not-found
// error. target may carry an @version suffix.
func printSuggestions(w io.Writer, m *manifest.Manifest, err error, target string) {
	if !errors.Is(err, errors.ErrCodePackageNotFound) {
		return
	}
	name, _, _ := strings.Cut(target, "@")
	if matches := m.Suggest(name, manifest.DefaultSuggestions, manifest.DefaultCutoff); len(matches) > 0 {
		printNextStep(w, "try next", strings.Join(matches, ","))
	}
}
