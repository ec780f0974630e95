package cli

import (
	"context"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/errors"
	fio "github.com/matzehuels/flowchart/pkg/io"
	"github.com/matzehuels/flowchart/pkg/session"
	"github.com/matzehuels/flowchart/pkg/view"
)

// editOpts holds the flags of the edit command.
type editOpts struct {
	draft    string        // resume this draft
	out      string        // export directory
	logFile  string        // log destination while the editor owns the terminal
	debounce time.Duration // label commit delay (0 = config)
}

// editCommand creates the interactive editor command.
func (c *CLI) editCommand() *cobra.Command {
	var opts editOpts

	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Edit a diagram in the terminal",
		Long: `Edit a diagram in the terminal.

The file is read if it exists; otherwise the editor starts empty. Changes are
autosaved as a draft that can be resumed with --draft. Press w to export and
? for key bindings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			return c.runEdit(cmd.Context(), file, opts)
		},
	}

	c.registerDraftFlag(cmd, &opts.draft, "resume a saved draft")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "export directory (default from config)")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs here while editing")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 0, "label commit delay (default from config)")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, file string, opts editOpts) error {
	if file != "" && opts.draft != "" {
		return errors.New(errors.ErrCodeInvalidInput, "give a file or --draft, not both")
	}

	// The editor owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut, c.Logger.GetLevel())
	registerLogHooks(logger)
	defer registerLogHooks(c.Logger)

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

	store := c.newStore(diagram.WithDiagram(d), diagram.WithLogger(logger))

	var autosave *session.Autosaver
	if drafts != nil && c.cfg.Drafts.Autosave > 0 {
		autosave = session.NewAutosaver(drafts, draft, c.cfg.Drafts.TTL,
			session.WithAutosaveWait(c.cfg.Drafts.Autosave),
			session.WithAutosaveLogger(logger))
	}

	wait := c.cfg.Editor.Debounce
	if opts.debounce > 0 {
		wait = opts.debounce
	}
	dir := c.cfg.Export.Dir
	if opts.out != "" {
		dir = opts.out
	}

	m := newEditor(editorConfig{
		ctx:       ctx,
		store:     store,
		viewOpts:  []view.Option{view.WithWait(wait), view.WithLogger(logger)},
		autosave:  autosave,
		exportDir: dir,
		filename:  c.cfg.Export.Filename,
	})

	final, runErr := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(editorModel); ok {
		m = fm
	}
	saveErr := m.finish()

	printStats(len(m.d.Shapes), len(m.d.Edges), false)
	switch {
	case saveErr != nil:
		printWarning("Draft not saved: %s", errors.UserMessage(saveErr))
	case autosave != nil && m.dirty:
		printSuccess("Draft saved")
		printDetail("ID: %s", draft.ID)
		printNextStep("Resume with", "flowchart edit --draft "+draft.ID)
	}
	// Interrupts end the program with ErrProgramKilled; that is a normal exit.
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}

// openEditSource returns the starting diagram and the draft it autosaves to.
// A missing file starts an empty diagram.
func (c *CLI) openEditSource(ctx context.Context, drafts session.Store, file, draftID string) (diagram.Diagram, *session.Draft, error) {
	if draftID != "" {
		if drafts == nil {
			return diagram.Diagram{}, nil, errors.New(errors.ErrCodeInvalidConfig, "drafts are disabled")
		}
		dr, err := session.Load(ctx, drafts, draftID)
		if err != nil {
			return diagram.Diagram{}, nil, err
		}
		return dr.Diagram, dr, nil
	}

	var d diagram.Diagram
	if file != "" {
		var err error
		d, err = fio.ImportJSON(file)
		switch {
		case errors.Is(err, errors.ErrCodeFileNotFound):
			c.Logger.Debug("starting empty diagram", "file", file)
		case err != nil:
			return diagram.Diagram{}, nil, err
		}
	}
	dr := session.NewDraft(d, c.cfg.Drafts.TTL)
	if file != "" {
		dr.Name = file
	}
	return d, dr, nil
}
