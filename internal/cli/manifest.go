package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rocks-admin/pkg/manifest"
)

type manifestOpts struct {
	suggestions int
}

// manifestCommand creates the manifest command for listing packages.
func (c *CLI) manifestCommand() *cobra.Command {
	var opts manifestOpts

	cmd := &cobra.Command{
		Use:   "manifest [package]",
		Short: "List packages and versions published by the server",
		Long: `List every package in the server manifest with its versions and arch tags.

Ordinary versions (scm, dev, ...) are listed before semantic versions. When a
package name is given only that package is shown; an unknown name prints the
closest matches instead.`,
		Example: `  rocks-admin manifest
  rocks-admin --server http://rocks.example.org manifest http`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return c.runManifest(cmd, name, opts)
		},
	}

	cmd.Flags().IntVar(&opts.suggestions, "suggestions", manifest.DefaultSuggestions, "max close matches shown for an unknown package")
	return cmd
}

func (c *CLI) runManifest(cmd *cobra.Command, name string, opts manifestOpts) error {
	ctx := cmd.Context()
	client, err := c.client()
	if err != nil {
		return err
	}
	m, err := c.fetchManifest(ctx, client)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	packages := m.Packages
	if name != "" {
		p, ok := m.Search(name)
		if !ok {
			errOut := cmd.ErrOrStderr()
			printError(errOut, "package %s not found", name)
			if matches := m.Suggest(name, opts.suggestions, manifest.DefaultCutoff); len(matches) > 0 {
				printNextStep(errOut, "try next", strings.Join(matches, ","))
			}
			return nil
		}
		packages = []*manifest.Package{p}
	}

	for i, p := range packages {
		printPackage(out, i+1, p)
	}
	return nil
}
