package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowchart/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	draft   string
	output  string // output file (single format) or base path
	layout  string
	formats string // comma-separated
	scale   float64
	noCache bool
	pipeline.Options
}

// renderCommand creates the render command for generating images.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a diagram to SVG, PNG, PDF or DOT",
		Long: `Render a diagram to SVG, PNG, PDF or DOT.

Layouts:
  canvas   shapes where they were placed, drawn like the editor (default)
  dot      graphviz hierarchical layout
  pinned   graphviz with every shape pinned to its position

PNG and PDF output on the canvas layout needs rsvg-convert (librsvg).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			opts.Layout = opts.layout
			opts.Formats = parseFormats(opts.formats)
			opts.Scale = opts.scale
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), file, &opts)
		},
	}

	c.registerDraftFlag(cmd, &opts.draft, "render a saved draft")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.layout, "layout", "l", pipeline.DefaultLayout, "layout: canvas, dot, pinned")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show shape ids (graphviz layouts)")
	cmd.Flags().BoolVar(&opts.Handles, "handles", false, "draw connection handles (canvas layout)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "re-render even if cached")
	_ = cmd.RegisterFlagCompletionFunc("layout", cobra.FixedCompletions(
		[]string{pipeline.LayoutCanvas, pipeline.LayoutDot, pipeline.LayoutPinned}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// completeFormats completes the last entry of a comma-separated format list.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return formatCompletions(toComplete), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func formatCompletions(toComplete string) []string {
	done, last := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		done, last = toComplete[:i+1], toComplete[i+1:]
	}
	have := parseFormats(done)
	var out []string
	for _, f := range []string{pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatDOT, pipeline.FormatJSON} {
		if strings.HasPrefix(f, last) && !slices.Contains(have, f) {
			out = append(out, done+f)
		}
	}
	return out
}

// parseFormats parses the --format flag into a slice of output formats.
// Empty entries and duplicates are dropped.
func parseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// basePath derives the base output path from the output and input paths.
// An output with a known format extension has the extension stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return "diagram"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to the file it is written to. A single
// format with an explicit output goes exactly there.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// slowRender reports whether opts call graphviz or rsvg-convert. Plain
// canvas SVG is instant.
func slowRender(opts pipeline.Options) bool {
	return slices.Contains(opts.Formats, pipeline.FormatPNG) ||
		slices.Contains(opts.Formats, pipeline.FormatPDF) ||
		opts.IsGraphviz()
}

// renderMessage is the spinner text for a render of n shapes.
func renderMessage(opts pipeline.Options, n int) string {
	return fmt.Sprintf("Rendering %d shapes as %s (%s layout)...", n, strings.Join(opts.Formats, ", "), opts.Layout)
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	d, err := c.loadDiagram(ctx, input, opts.draft)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var sp *spinner
	if slowRender(opts.Options) {
		sp = newSpinner(ctx, os.Stderr, renderMessage(opts.Options, len(d.Shapes)))
		sp.Start()
	}

	result, err := runner.Execute(ctx, d, opts.Options)
	if sp != nil {
		if err != nil && !sp.Cancelled() {
			sp.StopWithError("Rendering failed")
		} else {
			sp.Stop()
		}
	}
	if err != nil {
		return err
	}

	paths := outputPaths(opts.output, input, opts.Formats)
	for _, format := range opts.Formats {
		data, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		if err := os.WriteFile(paths[format], data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
	}

	printSuccess("Rendered %s layout", opts.Layout)
	printStats(result.Stats.ShapeCount, result.Stats.EdgeCount, result.CacheInfo.AllHit())
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	return nil
}
