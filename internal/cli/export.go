package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/pkg/errors"
	fio "github.com/matzehuels/flowchart/pkg/io"
)

// exportOpts holds the flags of the export command.
type exportOpts struct {
	draft  string
	out    string // directory
	name   string // file name
	stdout bool
}

// exportCommand creates the export command. It writes the diagram in the
// editor's JSON form to aira.drawio.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write a diagram or draft as " + fio.Filename,
		Long: `Write a diagram as a JSON document with its shapes and edges.

The input is a diagram file or a saved draft (--draft). The output file name
defaults to ` + fio.Filename + ` in the configured export directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			return c.runExport(cmd.Context(), file, opts)
		},
	}

	c.registerDraftFlag(cmd, &opts.draft, "export a saved draft")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output directory (default from config)")
	cmd.Flags().StringVar(&opts.name, "name", "", "output file name (default from config)")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "write to stdout instead of a file")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, file string, opts exportOpts) error {
	d, err := c.loadDiagram(ctx, file, opts.draft)
	if err != nil {
		return err
	}
	if dangling := d.Dangling(); len(dangling) > 0 {
		c.Logger.Warn("diagram has edges to missing shapes", "count", len(dangling))
	}

	if opts.stdout {
		return fio.WriteJSON(d, os.Stdout)
	}

	dir, name := c.cfg.Export.Dir, c.cfg.Export.Filename
	if opts.out != "" {
		dir = opts.out
	}
	if opts.name != "" {
		if err := errors.ValidateFilename(opts.name); err != nil {
			return err
		}
		name = opts.name
	}

	prog := newProgress(loggerFromContext(ctx))
	path, err := fio.ExportAs(ctx, d, dir, name)
	if err != nil {
		return err
	}
	prog.done("Exported " + path)

	printSuccess("Exported diagram")
	printStats(len(d.Shapes), len(d.Edges), false)
	printFile(path)
	return nil
}
