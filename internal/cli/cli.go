// Package cli implements the flowchart command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/pkg/buildinfo"
	"github.com/matzehuels/flowchart/pkg/cache"
	"github.com/matzehuels/flowchart/pkg/config"
	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/errors"
	fio "github.com/matzehuels/flowchart/pkg/io"
	"github.com/matzehuels/flowchart/pkg/pipeline"
	"github.com/matzehuels/flowchart/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "flowchart"
)

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

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Flowchart edits circle, square and diamond diagrams",
		Long:         `Flowchart is a terminal and HTTP editor for simple flowcharts: shapes connected by labeled arrows, exported as a JSON document.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/flowchart/config.toml)")

	// Register all subcommands
	root.AddCommand(c.editCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.draftsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration file and registers the log-backed
// observability hooks.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	registerLogHooks(c.Logger)
	c.Logger.Debug("config loaded", "path", c.configPath, "drafts", cfg.Drafts.Backend)
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newStore creates a diagram store configured from the editor section.
func (c *CLI) newStore(opts ...diagram.Option) *diagram.Store {
	all := append(c.cfg.StoreOptions(), diagram.WithLogger(c.Logger))
	return diagram.NewStore(append(all, opts...)...)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	rc, err := newCache(noCache || !c.cfg.Render.Cache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(rc, c.Logger), nil
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

// newDraftStore opens the configured draft backend. It returns nil when
// drafts are disabled.
func (c *CLI) newDraftStore(ctx context.Context) (session.Store, error) {
	d := c.cfg.Drafts
	var (
		s   session.Store
		err error
	)
	switch d.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendRedis:
		s, err = session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     d.RedisAddr,
			Password: d.RedisPassword,
			DB:       d.RedisDB,
		})
	case config.BackendMongo:
		s, err = session.NewMongoStore(ctx, session.MongoConfig{
			URI:      d.MongoURI,
			Database: d.MongoDatabase,
		})
	case config.BackendFile:
		s, err = session.NewFileStore(d.Dir)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown drafts backend %q", d.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// requireDraftStore is newDraftStore for commands that cannot work without
// drafts.
func (c *CLI) requireDraftStore(ctx context.Context) (session.Store, error) {
	s, err := c.newDraftStore(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "drafts are disabled (drafts.backend = %q)", config.BackendNone)
	}
	return s, nil
}

// loadDiagram reads the diagram named by a file argument or a draft id.
// Exactly one of file and draftID must be set.
func (c *CLI) loadDiagram(ctx context.Context, file, draftID string) (diagram.Diagram, error) {
	switch {
	case file != "" && draftID != "":
		return diagram.Diagram{}, errors.New(errors.ErrCodeInvalidInput, "give a file or --draft, not both")
	case draftID != "":
		ds, err := c.requireDraftStore(ctx)
		if err != nil {
			return diagram.Diagram{}, err
		}
		defer ds.Close()
		dr, err := session.Load(ctx, ds, draftID)
		if err != nil {
			return diagram.Diagram{}, err
		}
		return dr.Diagram, nil
	case file != "":
		return fio.ImportJSON(file)
	default:
		return diagram.Diagram{}, errors.New(errors.ErrCodeInvalidInput, "no input: give a file or --draft")
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the render cache directory using XDG standard
// (~/.cache/flowchart/).
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
