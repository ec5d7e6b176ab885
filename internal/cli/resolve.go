package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/inkog-io/dashboard-sub000/pkg/detail"
	apperrors "github.com/inkog-io/dashboard-sub000/pkg/errors"
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		findingsPath string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "resolve <topology.json> <node-id>",
		Short: "Look up detail-panel content for one node",
		Long: `Resolve computes the render model for a topology and returns the
detail-panel payload for the given node: matched findings, merged member
lists for supernodes, and remediation guidance for missing-control
placeholders.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			nodeID := args[1]
			if err := apperrors.ValidateNodeID(nodeID); err != nil {
				return err
			}

			t, err := readTopologyArg(args[0])
			if err != nil {
				return err
			}

			var findings []topology.Finding
			if findingsPath != "" {
				if err := apperrors.ValidatePath(findingsPath); err != nil {
					return err
				}
				findings, err = topology.ReadFindingsFile(findingsPath)
				if err != nil {
					return apperrors.Wrap(apperrors.ErrCodeInvalidFindings, err, "failed to read findings from %s", findingsPath)
				}
			}

			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}

			opts := c.pipelineOptions()
			opts.Topology = t
			model, _, err := runner.ComputeModel(ctx, opts)
			if err != nil {
				return err
			}

			node, ok := model.Node(nodeID)
			if !ok {
				return apperrors.New(apperrors.ErrCodeNodeNotFound, "node %q not found in render model", nodeID)
			}

			details := detail.Resolve(node, findings)
			data, err := json.MarshalIndent(details, "", "  ")
			if err != nil {
				return apperrors.Wrap(apperrors.ErrCodeInternal, err, "failed to encode details")
			}
			return writeOutput(output, data)
		},
	}

	cmd.Flags().StringVar(&findingsPath, "findings", "", "Path to the scanner findings JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the details to a file instead of stdout")

	return cmd
}
