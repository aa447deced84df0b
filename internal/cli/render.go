package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/objgraph/pkg/envelope"
	"github.com/matzehuels/objgraph/pkg/render"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

var renderFormats = []string{formatDOT, formatSVG, formatPDF, formatPNG}

type renderOpts struct {
	output   string  // output path, "-" for stdout, empty to derive from the input
	format   string  // one of renderFormats
	detailed bool    // list primitive fields in node labels
	scale    float64 // PNG scale factor
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG, scale: 2}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Draw an envelope as a node-link diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(renderFormats, opts.format) {
				return fmt.Errorf("invalid format: %s (must be %s)", opts.format, strings.Join(renderFormats, ", "))
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: input name with the format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: "+strings.Join(renderFormats, ", "))
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show primitive fields in node labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	env, err := envelope.ImportFile(path)
	if err != nil {
		return err
	}
	g, err := render.Build(env)
	if err != nil {
		return err
	}
	c.Logger.Debug("built graph", "nodes", len(g.Nodes), "edges", len(g.Edges))

	data, err := renderGraph(ctx, g, opts)
	if err != nil {
		return err
	}

	out := opts.output
	if out == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "." + opts.format
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	printSuccess("Rendered %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	printFile(out)
	return nil
}

func renderGraph(ctx context.Context, g *render.Graph, opts renderOpts) ([]byte, error) {
	dot := render.ToDOT(g, render.Options{Detailed: opts.detailed})
	if opts.format == formatDOT {
		return []byte(dot), nil
	}

	spin := newSpinner(ctx, "Rendering "+opts.format)
	spin.Start()
	defer spin.Stop()

	switch opts.format {
	case formatSVG:
		return render.RenderSVG(ctx, dot)
	case formatPDF:
		return render.RenderPDF(ctx, dot)
	case formatPNG:
		return render.RenderPNG(ctx, dot, opts.scale)
	}
	return nil, fmt.Errorf("unsupported format: %s", opts.format)
}
