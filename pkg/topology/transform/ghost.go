package transform

import (
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

// GhostID returns the deterministic node ID used for the ghost node of a
// control. The ID is stable across runs so selection state and detail
// lookups survive recomputation.
func GhostID(c topology.Control) string {
	return "ghost-" + string(c)
}

// ghostType maps a governance control to the node type its placeholder
// renders as.
func ghostType(c topology.Control) topology.NodeType {
	switch c {
	case topology.ControlHumanOversight:
		return topology.NodeTypeHumanApproval
	case topology.ControlAuthorization:
		return topology.NodeTypeAuthorizationCheck
	case topology.ControlAuditLogging:
		return topology.NodeTypeAuditLog
	case topology.ControlRateLimiting:
		return topology.NodeTypeRateLimitConfig
	default:
		return topology.NodeTypeUnknown
	}
}

// InjectGhosts synthesizes one placeholder node per governance control the
// scanner found missing. Ghost nodes carry no edges and are prepended to the
// node list so the layout engine biases them toward the top rank, keeping
// missing controls visually prominent. 0-4 ghosts are produced, one per
// false flag, in canonical control order.
func InjectGhosts(g *Graph) *Graph {
	missing := g.Governance.Missing()
	if len(missing) == 0 {
		return g
	}

	ghosts := make([]Node, 0, len(missing))
	for _, c := range missing {
		ghosts = append(ghosts, Node{
			Node: topology.Node{
				ID:        GhostID(c),
				Type:      ghostType(c),
				Label:     "Missing: " + c.Label(),
				RiskLevel: topology.RiskCritical,
			},
			Ghost:   true,
			Control: c,
		})
	}

	out := &Graph{
		Nodes:      append(ghosts, g.Nodes...),
		Edges:      g.Edges,
		Parent:     g.Parent,
		Groups:     g.Groups,
		Governance: g.Governance,
	}
	return out
}
