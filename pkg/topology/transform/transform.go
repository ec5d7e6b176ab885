package transform

import (
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
	"github.com/inkog-io/dashboard-sub000/pkg/topology/ingest"
)

// Node is a display-graph vertex: either an original topology node carried
// through unchanged, a synthetic supernode wrapping merged originals, or a
// synthetic ghost standing in for a missing governance control.
type Node struct {
	topology.Node

	// Ghost marks a synthetic placeholder for a missing governance control.
	// Ghost nodes have no edges and never participate in containment.
	Ghost bool
	// Control is the governance control a ghost node represents.
	Control topology.Control
	// Merged lists the original nodes folded into this supernode, in their
	// original order. Empty for ordinary nodes.
	Merged []topology.NodeRef
}

// IsSupernode reports whether the node wraps two or more merged originals.
func (n Node) IsSupernode() bool { return len(n.Merged) >= 2 }

// MergedCount returns the number of originals folded into the node.
func (n Node) MergedCount() int { return len(n.Merged) }

// Graph is the display graph handed to the layout engine: original nodes
// plus synthetic supernodes and ghosts, with redirected, deduplicated edges.
type Graph struct {
	Nodes      []Node
	Edges      []topology.Edge
	Parent     map[string]string
	Groups     map[string]bool
	Governance topology.GovernanceStatus
}

// FromIngest lifts a sanitized graph into the display-graph form without
// applying any transformation.
func FromIngest(g *ingest.Graph) *Graph {
	nodes := make([]Node, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = Node{Node: n}
	}
	return &Graph{
		Nodes:      nodes,
		Edges:      append([]topology.Edge(nil), g.Edges...),
		Parent:     copyMap(g.Parent),
		Groups:     copyBoolMap(g.Groups),
		Governance: g.Governance,
	}
}

// Node returns the node with the given ID, if present.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
