package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inkog-io/dashboard-sub000/pkg/pipeline"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		formats string
		outDir  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "export <topology.json>",
		Short: "Export a topology as flowchart text, SVG, or PNG",
		Long: `Export serializes the raw topology into shareable artifacts. Exports
operate on the topology as scanned: duplicate nodes stay separate and no
placeholder nodes are added. PNG export falls back to SVG when rasterization
is unavailable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			requested := parseFormats(formats)
			if err := pipeline.ValidateFormats(requested); err != nil {
				return err
			}

			t, err := readTopologyArg(args[0])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}

			opts := c.pipelineOptions()
			opts.Topology = t
			opts.Formats = requested
			opts.Refresh = refresh

			sp := newSpinner(ctx, "exporting")
			sp.Start()
			result, err := runner.Execute(ctx, opts)
			if sp.Cancelled() {
				sp.Stop()
				return ctx.Err()
			}
			if err != nil {
				sp.StopWithError("export failed")
				return err
			}
			sp.StopWithSuccess(fmt.Sprintf("exported %d artifacts", len(result.Artifacts)))

			base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			if base == "" || base == "-" {
				base = "topology"
			}

			for _, format := range requested {
				art, ok := result.Artifacts[format]
				if !ok {
					continue
				}
				path := filepath.Join(outDir, fmt.Sprintf("%s.%s", base, extFor(string(art.Format))))
				if err := writeOutput(path, art.Data); err != nil {
					return err
				}
				if string(art.Format) != format {
					printWarning("%s export degraded to %s", format, art.Format)
				}
				printFile(path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formats, "formats", "f", pipeline.FormatSVG, "Comma-separated formats: flowchart, svg, png")
	cmd.Flags().StringVarP(&outDir, "out-dir", "d", ".", "Directory to write artifacts into")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the result cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Recompute even when a cached result exists")

	return cmd
}

// extFor maps an artifact format to its file extension.
func extFor(format string) string {
	if format == pipeline.FormatFlowchart {
		return "mmd"
	}
	return format
}
