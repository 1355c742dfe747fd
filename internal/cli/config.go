package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/rocks-admin/pkg/deptree"
	"github.com/matzehuels/rocks-admin/pkg/manifest"
	"github.com/matzehuels/rocks-admin/pkg/server"
)

// envServer overrides the configured server URL.
const envServer = "ROCKS_SERVER"

// Config is the on-disk configuration. Zero values mean "use the default".
type Config struct {
	Server    string        `toml:"server"`     // Root URL of the rocks server
	Manifest  string        `toml:"manifest"`   // Manifest file name under the root
	CheckArch string        `toml:"check_arch"` // Artifact kind checked by deptree
	Exclude   []string      `toml:"exclude"`    // Packages never expanded
	MaxDepth  int           `toml:"max_depth"`  // Walk depth limit
	Timeout   time.Duration `toml:"timeout"`    // Per-request timeout, e.g. "10s"
	Workers   int           `toml:"workers"`    // Parallel targets in check
	Listen    string        `toml:"listen"`     // serve address
}

const defaultListen = "127.0.0.1:8080"

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Manifest == "" {
		c.Manifest = manifest.FileName
	}
	if c.CheckArch == "" {
		c.CheckArch = manifest.ArchRockspec
	}
	if c.Exclude == nil {
		c.Exclude = slices.Clone(deptree.DefaultExclude)
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = deptree.DefaultMaxDepth
	}
	if c.Timeout <= 0 {
		c.Timeout = server.DefaultTimeout
	}
	if c.Workers <= 0 {
		c.Workers = deptree.DefaultWorkers
	}
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	return c
}

// resolveOptions maps the config onto resolver options.
func (c Config) resolveOptions() deptree.Options {
	return deptree.Options{
		Arch:     c.CheckArch,
		Exclude:  c.Exclude,
		MaxDepth: c.MaxDepth,
	}
}

// configPath returns the config file location using the XDG standard
// (~/.config/rocks-admin/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads path, or the default location when path is empty. A
// missing default file yields an empty Config; a missing explicit file is
// an error. Unknown keys are rejected.
func loadConfig(path string) (Config, error) {
	var cfg Config
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, &configKeyError{path: path, keys: keys}
	}
	return cfg, nil
}

type configKeyError struct {
	path string
	keys []string
}

func (e *configKeyError) Error() string {
	return e.path + ": unknown keys: " + strings.Join(e.keys, ", ")
}
