package cli

import (
	"context"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rocks-admin/pkg/buildinfo"
	"github.com/matzehuels/rocks-admin/pkg/errors"
	"github.com/matzehuels/rocks-admin/pkg/manifest"
	"github.com/matzehuels/rocks-admin/pkg/server"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "rocks-admin"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	status io.Writer // spinner output
	flags  rootFlags
	cfg    Config
}

type rootFlags struct {
	config  string
	server  string
	timeout time.Duration
}

// New creates a new CLI instance that logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), status: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "rocks-admin inspects a rocks server",
		Long: `rocks-admin is a diagnostic client for a rocks server. It lists the
manifest, shows rockspecs and walks dependency trees to report which
rules resolve, which packages are missing and which artifacts are absent.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.config, "config", "", "config file (default $XDG_CONFIG_HOME/rocks-admin/config.toml)")
	pf.StringVar(&c.flags.server, "server", "", "http url of rocks server (env "+envServer+")")
	pf.DurationVar(&c.flags.timeout, "timeout", 0, "per-request timeout (default 10s)")

	root.AddCommand(c.manifestCommand())
	root.AddCommand(c.rockspecCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup resolves configuration with precedence flags > environment >
// config file > defaults and attaches the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(c.flags.config)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "load config")
	}
	if env := os.Getenv(envServer); env != "" {
		cfg.Server = env
	}
	if c.flags.server != "" {
		cfg.Server = c.flags.server
	}
	if c.flags.timeout > 0 {
		cfg.Timeout = c.flags.timeout
	}
	c.cfg = cfg.WithDefaults()

	registerLogHooks(c.Logger)
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Server Access
// =============================================================================

// client creates a server client from the resolved configuration.
func (c *CLI) client() (*server.Client, error) {
	return server.New(c.cfg.Server,
		server.WithTimeout(c.cfg.Timeout),
		server.WithManifestName(c.cfg.Manifest),
		server.WithUserAgent(buildinfo.UserAgent(appName)),
		server.WithLogger(c.Logger),
	)
}

// fetchManifest downloads and parses the manifest behind a spinner.
func (c *CLI) fetchManifest(ctx context.Context, client *server.Client) (*manifest.Manifest, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	spin := newSpinnerWithContext(ctx, c.status, "Fetching manifest...")
	spin.Start()
	m, err := client.Manifest(ctx)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	prog.done("Fetched manifest: " + pluralize(len(m.Packages), "package"))
	return m, nil
}

// =============================================================================
// Helpers
// =============================================================================

// errorMessage renders err without error codes.
func errorMessage(err error) string {
	return errors.UserMessage(err)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// PrintError prints err to w without its error code.
func PrintError(w io.Writer, err error) {
	printError(w, "%s", errorMessage(err))
}
