package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svgslice/pkg/errors"
	"github.com/matzehuels/svgslice/pkg/geom"
	"github.com/matzehuels/svgslice/pkg/pipeline"
)

// inspectCommand creates the inspect command: run the analyze stage
// only and print the clusters found, without writing any output.
func (c *CLI) inspectCommand() *cobra.Command {
	var pf profileFlags

	cmd := &cobra.Command{
		Use:   "inspect <input.svg>",
		Short: "Show the clusters a drawing would produce",
		Args:  cobra.ExactArgs(1),
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

			printSuccess("Analyzed %s", StyleHighlight.Render(name))
			printDetail("%d candidate paths, %d with bounds, %d clusters (proximity %g)",
				analysis.Stats.PathCount, analysis.Stats.BoxCount, len(analysis.Clusters), p.Proximity)
			fmt.Println(clusterTable(analysis.Clusters, p.MinWidth, p.MinHeight))
			return nil
		},
	}

	registerProfileFlags(cmd, &pf)
	return cmd
}

// clusterTable renders the clusters as a table, marking those that pass
// the profile's size filter.
func clusterTable(clusters []geom.BBox, minW, minH float64) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	cellStyle := lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		}).
		Headers("#", "CX", "CY", "W", "H", "SIZE")

	for i, c := range clusters {
		size := iconSuccess
		if !(c.W() > minW && c.H() > minH) {
			size = iconError
		}
		t.Row(
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%.1f", c.CX()),
			fmt.Sprintf("%.1f", c.CY()),
			fmt.Sprintf("%.1f", c.W()),
			fmt.Sprintf("%.1f", c.H()),
			size,
		)
	}
	return t.Render()
}
