package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svgslice/pkg/errors"
	"github.com/matzehuels/svgslice/pkg/pipeline"
)

// sliceCommand creates the slice command, the main entry point: run the
// full pipeline and write one SVG file per profile output.
func (c *CLI) sliceCommand() *cobra.Command {
	var (
		pf      profileFlags
		outDir  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "slice <input.svg>",
		Short: "Slice a drawing into per-cluster viewport crops",
		Long: `Slice finds all paths with the profile's candidate fill, clusters them
by proximity, ranks the top row left to right, and writes one cropped
SVG per profile output.

Examples:
  svgslice slice hold.svg                          # Built-in Aerostan profile
  svgslice slice hold.svg -p warehouse.toml -o out # Custom profile and directory
  svgslice slice hold.svg --fill "#AABBCC"         # Override the candidate fill`,
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

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Cache.Close()

			prog := newProgress(c.Logger)
			result, err := runner.Execute(cmd.Context(), pipeline.Options{
				Source:     source,
				SourceName: name,
				Profile:    p,
				NoCache:    noCache,
			})
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}
			prog.done(fmt.Sprintf("Sliced %d outputs", len(result.Slices)))

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			printSuccess("Sliced %s", StyleHighlight.Render(name))
			printStats(result.Stats.PathCount, result.Stats.ClusterCount, result.CacheHit)
			for _, s := range result.Slices {
				path := filepath.Join(outDir, s.Name+".svg")
				if err := os.WriteFile(path, s.SVG, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				printFile(path)
			}
			printNextStep("Inspect clusters", fmt.Sprintf("svgslice inspect %s", args[0]))
			return nil
		},
	}

	registerProfileFlags(cmd, &pf)
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "output directory")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the result cache")

	return cmd
}
