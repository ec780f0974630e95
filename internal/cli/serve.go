package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/internal/server"
	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/session"
	"github.com/matzehuels/flowchart/pkg/view"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr     string
	draft    string
	noCache  bool
	debounce time.Duration
}

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve a diagram over a JSON HTTP API",
		Long: `Serve a diagram over a JSON HTTP API for a browser canvas.

The diagram starts from the file, a draft (--draft) or empty. Every change is
autosaved as a draft when drafts are enabled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			return c.runServe(cmd.Context(), file, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	c.registerDraftFlag(cmd, &opts.draft, "serve a saved draft")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 0, "label commit delay (default from config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, file string, opts serveOpts) error {
	drafts, err := c.newDraftStore(ctx)
	if err != nil {
		return err
	}
	if drafts != nil {
		defer drafts.Close()
	}

	d, draft, err := c.openEditSource(ctx, drafts, file, opts.draft)
	if err != nil {
		return err
	}
	store := c.newStore(diagram.WithDiagram(d))

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	wait := c.cfg.Editor.Debounce
	if opts.debounce > 0 {
		wait = opts.debounce
	}
	serverOpts := []server.Option{
		server.WithLogger(c.Logger),
		server.WithRunner(runner),
		server.WithFilename(c.cfg.Export.Filename),
		server.WithViewOptions(view.WithWait(wait)),
	}

	var autosave *session.Autosaver
	if drafts != nil && c.cfg.Drafts.Autosave > 0 {
		autosave = session.NewAutosaver(drafts, draft, c.cfg.Drafts.TTL,
			session.WithAutosaveWait(c.cfg.Drafts.Autosave),
			session.WithAutosaveLogger(c.Logger))
		serverOpts = append(serverOpts, server.WithChangeHook(autosave.Changed))
		c.Logger.Info("Autosaving", "draft", draft.ID, "backend", drafts.Backend())
	}

	addr := c.cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}

	srv := server.New(store, serverOpts...)
	c.Logger.Info("Serving", "addr", "http://"+addr, "shapes", len(d.Shapes), "edges", len(d.Edges))
	err = srv.ListenAndServe(ctx, addr)

	if autosave != nil {
		autosave.Flush()
		if saveErr := autosave.Err(); saveErr != nil {
			c.Logger.Warn("last autosave failed", "err", saveErr)
		}
	}
	return err
}
