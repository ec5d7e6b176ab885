package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/inkog-io/dashboard-sub000/pkg/errors"
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		rankSep float64
		nodeSep float64
		noMerge bool
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "render <topology.json>",
		Short: "Compute the positioned render model for a topology",
		Long: `Render sanitizes a topology scan, collapses duplicate nodes into
supernodes, injects placeholder nodes for missing governance controls, and
computes node positions. The result is the JSON render model the dashboard
canvas consumes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

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
			opts.NoMerge = noMerge
			opts.Refresh = refresh
			if cmd.Flags().Changed("rank-sep") {
				opts.RankSep = rankSep
			}
			if cmd.Flags().Changed("node-sep") {
				opts.NodeSep = nodeSep
			}

			sp := newSpinner(ctx, "computing layout")
			sp.Start()
			result, err := runner.Execute(ctx, opts)
			if sp.Cancelled() {
				sp.Stop()
				return ctx.Err()
			}
			if err != nil {
				sp.StopWithError("layout failed")
				return err
			}
			sp.Stop()

			reportDegradations(result.Report)

			data, err := json.MarshalIndent(result.Model, "", "  ")
			if err != nil {
				return apperrors.Wrap(apperrors.ErrCodeInternal, err, "failed to encode render model")
			}
			if err := writeOutput(output, data); err != nil {
				return err
			}

			printSuccess("render model ready")
			printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.GhostCount, result.CacheInfo.ModelHit)
			if len(result.TopologyHash) >= 12 {
				printKeyValue("topology", result.TopologyHash[:12])
			}
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the model to a file instead of stdout")
	cmd.Flags().Float64Var(&rankSep, "rank-sep", 0, "Vertical spacing between ranks in pixels")
	cmd.Flags().Float64Var(&nodeSep, "node-sep", 0, "Horizontal spacing between siblings in pixels")
	cmd.Flags().BoolVar(&noMerge, "no-merge", false, "Keep duplicate nodes instead of collapsing them")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the result cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Recompute even when a cached result exists")

	return cmd
}

// readTopologyArg reads a topology from a file path, or from stdin when the
// argument is "-".
func readTopologyArg(arg string) (*topology.Topology, error) {
	if arg == "-" {
		t, err := topology.ReadTopology(os.Stdin)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTopology, err, "failed to read topology from stdin")
		}
		return t, nil
	}
	if err := apperrors.ValidatePath(arg); err != nil {
		return nil, err
	}
	t, err := topology.ReadTopologyFile(arg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTopology, err, "failed to read topology from %s", arg)
	}
	return t, nil
}

// writeOutput writes data to the given path, or stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := apperrors.ValidatePath(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "failed to write %s", path)
	}
	return nil
}
