// Package cli implements the svgslice command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svgslice/pkg/buildinfo"
	"github.com/matzehuels/svgslice/pkg/cache"
	"github.com/matzehuels/svgslice/pkg/pipeline"
	"github.com/matzehuels/svgslice/pkg/profile"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "svgslice"

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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "svgslice",
		Short:        "Svgslice crops SVG drawings into per-cluster viewports",
		Long:         `Svgslice finds groups of same-fill paths in an SVG drawing, clusters them by proximity, and emits one cropped document per configured output. It was built to slice cargo-hold cross sections into per-container images, but works on any drawing where fill color marks the shapes of interest.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.sliceCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.pickCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/svgslice/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Profile Helpers
// =============================================================================

// profileFlags are the shared flags that tune a profile from the
// command line. Empty or negative values keep the profile's setting.
type profileFlags struct {
	path      string
	fill      string
	proximity float64
}

func registerProfileFlags(cmd *cobra.Command, f *profileFlags) {
	cmd.Flags().StringVarP(&f.path, "profile", "p", "", "profile TOML file (built-in Aerostan profile if empty)")
	cmd.Flags().StringVar(&f.fill, "fill", "", "override the candidate fill color")
	cmd.Flags().Float64Var(&f.proximity, "proximity", -1, "override the clustering distance")
}

// loadProfile resolves the profile for a run: the TOML file when given,
// the built-in default otherwise, with flag overrides applied on top.
func loadProfile(f profileFlags) (*profile.Profile, error) {
	p := profile.Default()
	if f.path != "" {
		var err error
		if p, err = profile.Load(f.path); err != nil {
			return nil, err
		}
	}
	if f.fill != "" {
		p.Fill = f.fill
	}
	if f.proximity >= 0 {
		p.Proximity = f.proximity
	}
	return p, nil
}

// readSource reads the input document and returns its bytes and display name.
func readSource(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, filepath.Base(path), nil
}
