package ingest

import (
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

// Graph is the sanitized form of a raw topology. Edges reference only nodes
// that exist, containment is a validated forest, and contains edges have been
// folded into the Parent map instead of appearing in Edges.
type Graph struct {
	// Nodes in original scanner order.
	Nodes []topology.Node
	// Edges are the non-containment edges with both endpoints present.
	Edges []topology.Edge
	// Parent maps a child node ID to its containing node ID.
	// A node has at most one parent; the relation is acyclic.
	Parent map[string]string
	// Groups is the set of node IDs that contain at least one valid child.
	Groups map[string]bool
	// Governance is carried through unchanged for the ghost injection stage.
	Governance topology.GovernanceStatus
}

// Node returns the node with the given ID, if present.
func (g *Graph) Node(id string) (topology.Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return topology.Node{}, false
}

// Report records what sanitization discarded or repaired. Nothing in it is
// an error: the pipeline never refuses a topology, but callers may want to
// surface the counts for observability.
type Report struct {
	DroppedEdges   int  `json:"dropped_edges"`
	DroppedParents int  `json:"dropped_parents"`
	BrokenCycles   int  `json:"broken_cycles"`
	DeclaredNodes  int  `json:"declared_nodes,omitempty"`
	DeclaredEdges  int  `json:"declared_edges,omitempty"`
	CountMismatch  bool `json:"count_mismatch,omitempty"`
	LayoutFallback bool `json:"layout_fallback,omitempty"`
}

// Clean reports whether sanitization changed nothing.
func (r Report) Clean() bool {
	return r.DroppedEdges == 0 && r.DroppedParents == 0 && r.BrokenCycles == 0
}

// Sanitize validates a raw topology into a Graph. It never fails: the
// detector performs best-effort static analysis and commonly emits dangling
// references (delegation to a dynamically-resolved target is the usual
// case), so any edge or parent reference whose endpoint does not exist is
// dropped silently and counted in the Report.
func Sanitize(t *topology.Topology) (*Graph, Report) {
	report := Report{
		DeclaredNodes: t.Metadata.NodeCount,
		DeclaredEdges: t.Metadata.EdgeCount,
	}
	if t.Metadata.NodeCount != 0 && t.Metadata.NodeCount != len(t.Nodes) {
		report.CountMismatch = true
	}

	valid := make(map[string]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		valid[n.ID] = true
	}

	// Normalize the closed vocabularies. Topologies decoded from JSON
	// arrive normalized already, but in-process callers can hand over
	// zero values; the render model must not depend on which path ran.
	nodes := append([]topology.Node(nil), t.Nodes...)
	for i := range nodes {
		nodes[i].Type = topology.ParseNodeType(string(nodes[i].Type))
		nodes[i].RiskLevel = topology.ParseRiskLevel(string(nodes[i].RiskLevel))
	}

	g := &Graph{
		Nodes:      nodes,
		Parent:     make(map[string]string),
		Groups:     make(map[string]bool),
		Governance: t.Governance,
	}

	for _, e := range t.Edges {
		if !valid[e.From] || !valid[e.To] {
			if e.Type == topology.EdgeContains {
				report.DroppedParents++
			} else {
				report.DroppedEdges++
			}
			continue
		}
		if e.Type == topology.EdgeContains {
			// First parent wins; a second contains edge for the same child
			// would break the forest invariant.
			if _, has := g.Parent[e.To]; has {
				report.DroppedParents++
				continue
			}
			if e.To == e.From {
				report.DroppedParents++
				continue
			}
			g.Parent[e.To] = e.From
			continue
		}
		g.Edges = append(g.Edges, e)
	}

	report.BrokenCycles = breakContainmentCycles(g.Parent)

	for _, p := range g.Parent {
		g.Groups[p] = true
	}

	return g, report
}

// breakContainmentCycles removes parent links until the containment relation
// is acyclic. Walking up from each child, any link that closes a loop back
// onto the walk is deleted. Returns the number of links removed.
func breakContainmentCycles(parent map[string]string) int {
	broken := 0
	for child := range parent {
		seen := map[string]bool{child: true}
		cur := child
		for {
			p, ok := parent[cur]
			if !ok {
				break
			}
			if seen[p] {
				delete(parent, cur)
				broken++
				break
			}
			seen[p] = true
			cur = p
		}
	}
	return broken
}

// Roots returns the IDs of nodes without a parent, in node order.
func (g *Graph) Roots() []string {
	roots := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, has := g.Parent[n.ID]; !has {
			roots = append(roots, n.ID)
		}
	}
	return roots
}

// Children returns the IDs of nodes directly contained by id, in node order.
func (g *Graph) Children(id string) []string {
	var kids []string
	for _, n := range g.Nodes {
		if g.Parent[n.ID] == id {
			kids = append(kids, n.ID)
		}
	}
	return kids
}
