package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svgslice/pkg/errors"
	"github.com/matzehuels/svgslice/pkg/geom"
	"github.com/matzehuels/svgslice/pkg/pipeline"
)

// graphCommand creates the graph command: a debug tool that renders the
// proximity graph of candidate boxes. Connected components of this
// graph are exactly the clusters the slicer merges.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		pf     profileFlags
		output string
		dotOut bool
	)

	cmd := &cobra.Command{
		Use:   "graph <input.svg>",
		Short: "Render the proximity graph of candidate boxes",
		Long: `Graph draws every candidate bounding box as a node and connects two
nodes when the boxes are within the profile's proximity of each other.
Useful for debugging why shapes did or did not end up in the same
cluster.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(pf)
			if err != nil {
				return err
			}

			source, name, err := readSource(args[0])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(true)
			if err != nil {
				return err
			}
			analysis, err := runner.Analyze(cmd.Context(), pipeline.Options{
				Source:     source,
				SourceName: name,
				Profile:    p,
				NoCache:    true,
			})
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}

			dot := proximityDOT(analysis.Boxes, p.Proximity)
			if dotOut {
				if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				printSuccess("Wrote proximity graph (DOT)")
				printFile(output)
				return nil
			}

			sp := newSpinnerWithContext(cmd.Context(), "rendering proximity graph")
			sp.Start()
			svg, err := renderDOT(cmd.Context(), dot)
			sp.Stop()
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, svg, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Wrote proximity graph with %d boxes", len(analysis.Boxes))
			printFile(output)
			return nil
		},
	}

	registerProfileFlags(cmd, &pf)
	cmd.Flags().StringVarP(&output, "output", "o", "graph.svg", "output file")
	cmd.Flags().BoolVar(&dotOut, "dot", false, "emit DOT source instead of rendering SVG")

	return cmd
}

// proximityDOT converts candidate boxes into Graphviz DOT format. Boxes
// become nodes labeled with their center and size; an edge joins every
// pair within the given proximity.
func proximityDOT(boxes []geom.BBox, proximity float64) string {
	var buf bytes.Buffer
	buf.WriteString("graph proximity {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for i, b := range boxes {
		label := fmt.Sprintf("%d\\n(%.0f, %.0f)\\n%.0f x %.0f", i, b.CX(), b.CY(), b.W(), b.H())
		fmt.Fprintf(&buf, "  b%d [label=\"%s\"];\n", i, label)
	}

	buf.WriteString("\n")
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			if boxes[i].Overlaps(boxes[j], proximity) {
				fmt.Fprintf(&buf, "  b%d -- b%d;\n", i, j)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// renderDOT renders a DOT graph to SVG using Graphviz.
func renderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
