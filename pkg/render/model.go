package render

import (
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

// Kind distinguishes the four varieties of render node.
type Kind string

const (
	KindLeaf      Kind = "leaf"
	KindSupernode Kind = "supernode"
	KindGhost     Kind = "ghost"
	KindGroup     Kind = "group"
)

// Point is a top-left coordinate in canvas units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a node's rendered dimensions.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Node is a positioned, render-ready node handed to the canvas layer.
// Position is the top-left corner; compound nesting is expressed through
// ParentID rather than coordinate containment alone.
type Node struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	Position Point  `json:"position"`
	Size     Size   `json:"size"`
	ParentID string `json:"parent_id,omitempty"`

	// Originating semantic data, carried for display and click handling.
	Type        topology.NodeType  `json:"type"`
	Label       string             `json:"label"`
	RiskLevel   topology.RiskLevel `json:"risk_level"`
	RiskReasons []string           `json:"risk_reasons,omitempty"`
	Location    *topology.Location `json:"location,omitempty"`

	// Supernode drill-down data.
	MergedCount int                `json:"merged_count,omitempty"`
	MergedNodes []topology.NodeRef `json:"merged_nodes,omitempty"`

	// Ghost data.
	MissingControl topology.Control `json:"missing_control,omitempty"`
}

// ClickPayload is what the detail panel receives when a node is selected.
type ClickPayload struct {
	Type           string             `json:"type"`
	NodeID         string             `json:"node_id"`
	MissingControl topology.Control   `json:"missing_control,omitempty"`
	RiskLevel      topology.RiskLevel `json:"risk_level"`
	MergedNodes    []topology.NodeRef `json:"merged_nodes,omitempty"`
}

// Click returns the selection payload for the node. Ghost nodes report
// their missing control at CRITICAL risk; supernodes expose their member
// list for drill-down.
func (n Node) Click() ClickPayload {
	switch n.Kind {
	case KindGhost:
		return ClickPayload{
			Type:           "GhostNode",
			NodeID:         n.ID,
			MissingControl: n.MissingControl,
			RiskLevel:      topology.RiskCritical,
		}
	case KindSupernode:
		return ClickPayload{
			Type:        "MergedNode",
			NodeID:      n.ID,
			RiskLevel:   n.RiskLevel,
			MergedNodes: n.MergedNodes,
		}
	default:
		return ClickPayload{
			Type:      "Node",
			NodeID:    n.ID,
			RiskLevel: n.RiskLevel,
		}
	}
}

// EdgeStyle is the visual treatment of a rendered edge. It is a pure
// function of the originating edge type; see [StyleFor].
type EdgeStyle struct {
	Color    string `json:"color"`
	Dashed   bool   `json:"dashed,omitempty"`
	Animated bool   `json:"animated,omitempty"`
	// Arrow is always "closed"; carried explicitly so the canvas layer
	// needs no defaults of its own.
	Arrow string `json:"arrow"`
}

const (
	colorNeutral = "#94a3b8"
	colorGuard   = "#16a34a"
)

// StyleFor maps an edge type to its rendered style: data-flow edges are
// animated in the neutral color, guard edges are green and dashed, and
// everything else falls back to solid neutral gray. All edges carry a
// closed arrowhead at the target.
func StyleFor(t topology.EdgeType) EdgeStyle {
	switch t {
	case topology.EdgeDataFlow:
		return EdgeStyle{Color: colorNeutral, Animated: true, Arrow: "closed"}
	case topology.EdgeGuards:
		return EdgeStyle{Color: colorGuard, Dashed: true, Arrow: "closed"}
	default:
		return EdgeStyle{Color: colorNeutral, Arrow: "closed"}
	}
}

// Edge is a positioned relation between two render nodes.
type Edge struct {
	Source string    `json:"source"`
	Target string    `json:"target"`
	Style  EdgeStyle `json:"style"`
}

// Model is the complete render-ready output: a flat node list with
// positions and a styled edge list. Every edge endpoint is guaranteed to
// exist in the node set.
type Model struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the render node with the given ID, if present.
func (m *Model) Node(id string) (Node, bool) {
	for _, n := range m.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
