package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/rocks-admin/pkg/api"
)

// serveCommand creates the serve command that exposes the diagnostics over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only JSON API over the rocks server",
		Long: `Serve the manifest, rockspec and deptree diagnostics as a JSON API.

Endpoints:
  GET /healthz
  GET /packages
  GET /packages/{name}
  GET /packages/{name}/{version}/rockspec
  GET /packages/{name}/{version}/deptree?arch=

{version} may be "latest". Every request fetches a fresh manifest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = c.cfg.Listen
			}
			client, err := c.client()
			if err != nil {
				return err
			}

			srv := api.New(client, api.Options{
				Resolve: c.cfg.resolveOptions(),
				Logger:  c.Logger,
			})
			printInfo(cmd.ErrOrStderr(), "Serving %s on %s", StyleLink.Render(c.cfg.Server), StyleHighlight.Render("http://"+listen))
			return srv.ListenAndServe(cmd.Context(), listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, "+defaultListen+")")
	return cmd
}
