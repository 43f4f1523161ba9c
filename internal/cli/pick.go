package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svgslice/pkg/errors"
	"github.com/matzehuels/svgslice/pkg/geom"
	"github.com/matzehuels/svgslice/pkg/pipeline"
	"github.com/matzehuels/svgslice/pkg/profile"
)

// pickCommand creates the pick command: analyze a drawing, choose a
// cluster interactively, and slice just that one.
func (c *CLI) pickCommand() *cobra.Command {
	var (
		pf     profileFlags
		output string
		square bool
		pad    float64
	)

	cmd := &cobra.Command{
		Use:   "pick <input.svg>",
		Short: "Interactively pick one cluster and slice it",
		Long: `Pick runs the analyze stage, shows every cluster found, and lets you
choose one with the arrow keys. The chosen cluster is cropped and
written as a single SVG, bypassing the top-row ranking.`,
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

			model := NewClusterListModel(analysis.Clusters)
			final, err := tea.NewProgram(model).Run()
			if err != nil {
				return fmt.Errorf("run picker: %w", err)
			}
			m, ok := final.(ClusterListModel)
			if !ok || m.Selected == nil {
				printInfo("Nothing selected")
				return nil
			}

			out := profile.Output{Name: strings.TrimSuffix(filepath.Base(output), ".svg")}
			if square {
				out.Crop = profile.CropSquare
				out.Pad = pad
			} else {
				out.Crop = profile.CropRect
				out.PadLeft, out.PadRight, out.PadTop, out.PadBottom = pad, pad, pad, pad
			}

			s, err := pipeline.RenderSlice(analysis, *m.Selected, out, p)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}
			if err := os.WriteFile(output, s.SVG, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Sliced cluster at (%.1f, %.1f)", m.Selected.CX(), m.Selected.CY())
			printFile(output)
			return nil
		},
	}

	registerProfileFlags(cmd, &pf)
	cmd.Flags().StringVarP(&output, "output", "o", "slice.svg", "output file")
	cmd.Flags().BoolVar(&square, "square", false, "use a centered square crop instead of a rect crop")
	cmd.Flags().Float64Var(&pad, "pad", 20, "crop padding")

	return cmd
}

// =============================================================================
// ClusterListModel - Interactive cluster selection
// =============================================================================

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// ClusterListModel is the bubbletea model for interactive cluster selection.
type ClusterListModel struct {
	Clusters []geom.BBox
	Cursor   int
	Selected *geom.BBox
	Height   int
	Offset   int
}

// NewClusterListModel creates a new cluster list model.
func NewClusterListModel(clusters []geom.BBox) ClusterListModel {
	return ClusterListModel{
		Clusters: clusters,
		Cursor:   0,
		Height:   15,
		Offset:   0,
	}
}

func (m ClusterListModel) Init() tea.Cmd {
	return nil
}

func (m ClusterListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Clusters)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			cluster := m.Clusters[m.Cursor]
			m.Selected = &cluster
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ClusterListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select a cluster") + "\n")
	b.WriteString(listDimStyle.Render("↑/↓ move · enter slice · q quit") + "\n\n")

	end := m.Offset + m.Height
	if end > len(m.Clusters) {
		end = len(m.Clusters)
	}
	for i := m.Offset; i < end; i++ {
		c := m.Clusters[i]
		line := fmt.Sprintf("cluster %-3d center (%7.1f, %7.1f)  size %.0f×%.0f", i, c.CX(), c.CY(), c.W(), c.H())
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString(listNormalStyle.Render("  "+line) + "\n")
		}
	}

	if len(m.Clusters) > m.Height {
		b.WriteString("\n" + listDimStyle.Render(fmt.Sprintf("showing %d-%d of %d", m.Offset+1, end, len(m.Clusters))))
	}
	return b.String()
}
