package ingest

import (
	"testing"

	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

func node(id string, typ topology.NodeType) topology.Node {
	return topology.Node{ID: id, Type: typ, Label: id, RiskLevel: topology.RiskSafe}
}

func TestSanitize_DropsDanglingEdges(t *testing.T) {
	topo := &topology.Topology{
		Nodes: []topology.Node{node("a", topology.NodeTypeLLMCall), node("b", topology.NodeTypeToolCall)},
		Edges: []topology.Edge{
			{From: "a", To: "b", Type: topology.EdgeDataFlow},
			{From: "a", To: "missing", Type: topology.EdgeDataFlow},
			{From: "ghost", To: "b", Type: topology.EdgeGuards},
		},
	}

	g, report := Sanitize(topo)

	if got, want := len(g.Edges), 1; got != want {
		t.Fatalf("edges = %d, want %d", got, want)
	}
	if g.Edges[0].From != "a" || g.Edges[0].To != "b" {
		t.Errorf("surviving edge = %s->%s, want a->b", g.Edges[0].From, g.Edges[0].To)
	}
	if got, want := report.DroppedEdges, 2; got != want {
		t.Errorf("dropped edges = %d, want %d", got, want)
	}
}

func TestSanitize_BuildsParentForest(t *testing.T) {
	topo := &topology.Topology{
		Nodes: []topology.Node{
			node("loop", topology.NodeTypeLoop),
			node("call", topology.NodeTypeLLMCall),
			node("tool", topology.NodeTypeToolCall),
		},
		Edges: []topology.Edge{
			{From: "loop", To: "call", Type: topology.EdgeContains},
			{From: "loop", To: "tool", Type: topology.EdgeContains},
			{From: "loop", To: "nobody", Type: topology.EdgeContains},
		},
	}

	g, report := Sanitize(topo)

	if got := g.Parent["call"]; got != "loop" {
		t.Errorf("parent[call] = %q, want loop", got)
	}
	if got := g.Parent["tool"]; got != "loop" {
		t.Errorf("parent[tool] = %q, want loop", got)
	}
	if !g.Groups["loop"] {
		t.Error("loop should be marked as a group")
	}
	if got, want := report.DroppedParents, 1; got != want {
		t.Errorf("dropped parents = %d, want %d", got, want)
	}
	if got, want := len(g.Edges), 0; got != want {
		t.Errorf("contains edges must not appear in Edges, got %d", got)
	}
}

func TestSanitize_SecondParentDropped(t *testing.T) {
	topo := &topology.Topology{
		Nodes: []topology.Node{
			node("p1", topology.NodeTypeLoop),
			node("p2", topology.NodeTypeLoop),
			node("c", topology.NodeTypeLLMCall),
		},
		Edges: []topology.Edge{
			{From: "p1", To: "c", Type: topology.EdgeContains},
			{From: "p2", To: "c", Type: topology.EdgeContains},
		},
	}

	g, report := Sanitize(topo)

	if got := g.Parent["c"]; got != "p1" {
		t.Errorf("parent[c] = %q, want p1 (first wins)", got)
	}
	if report.DroppedParents != 1 {
		t.Errorf("dropped parents = %d, want 1", report.DroppedParents)
	}
}

func TestSanitize_BreaksContainmentCycle(t *testing.T) {
	topo := &topology.Topology{
		Nodes: []topology.Node{
			node("a", topology.NodeTypeLoop),
			node("b", topology.NodeTypeLoop),
			node("c", topology.NodeTypeLoop),
		},
		Edges: []topology.Edge{
			{From: "a", To: "b", Type: topology.EdgeContains},
			{From: "b", To: "c", Type: topology.EdgeContains},
			{From: "c", To: "a", Type: topology.EdgeContains},
		},
	}

	g, report := Sanitize(topo)

	if report.BrokenCycles == 0 {
		t.Fatal("expected at least one broken containment cycle")
	}
	// The surviving relation must be acyclic.
	for child := range g.Parent {
		seen := map[string]bool{child: true}
		cur := child
		for {
			p, ok := g.Parent[cur]
			if !ok {
				break
			}
			if seen[p] {
				t.Fatalf("containment still cyclic through %q", p)
			}
			seen[p] = true
			cur = p
		}
	}
}

func TestSanitize_CleanTopologyReportsClean(t *testing.T) {
	topo := &topology.Topology{
		Metadata: topology.Metadata{NodeCount: 2, EdgeCount: 1},
		Nodes:    []topology.Node{node("a", topology.NodeTypeLLMCall), node("b", topology.NodeTypeToolCall)},
		Edges:    []topology.Edge{{From: "a", To: "b", Type: topology.EdgeDataFlow}},
	}

	_, report := Sanitize(topo)

	if !report.Clean() {
		t.Errorf("report = %+v, want clean", report)
	}
	if report.CountMismatch {
		t.Error("counts match, mismatch flag should be false")
	}
}

func TestSanitize_CountMismatchFlagged(t *testing.T) {
	topo := &topology.Topology{
		Metadata: topology.Metadata{NodeCount: 99},
		Nodes:    []topology.Node{node("a", topology.NodeTypeLLMCall)},
	}
	_, report := Sanitize(topo)
	if !report.CountMismatch {
		t.Error("expected count mismatch flag")
	}
}

func TestSanitize_NormalizesVocabularies(t *testing.T) {
	// In-process callers can hand over zero-value enums that a JSON decode
	// would have normalized. Both paths must produce the same graph, or
	// cached and freshly computed models diverge.
	topo := &topology.Topology{
		Nodes: []topology.Node{
			{ID: "a", Label: "a"},
			{ID: "b", Label: "b", Type: "Teleporter", RiskLevel: "EXTREME"},
		},
	}

	g, _ := Sanitize(topo)
	for _, n := range g.Nodes {
		if n.Type != topology.NodeTypeUnknown {
			t.Errorf("node %s type = %q, want %q", n.ID, n.Type, topology.NodeTypeUnknown)
		}
		if n.RiskLevel != topology.RiskSafe {
			t.Errorf("node %s risk = %q, want %q", n.ID, n.RiskLevel, topology.RiskSafe)
		}
	}
	if topo.Nodes[0].RiskLevel != "" {
		t.Error("sanitize mutated the raw topology")
	}
}

func TestRootsAndChildren(t *testing.T) {
	topo := &topology.Topology{
		Nodes: []topology.Node{
			node("loop", topology.NodeTypeLoop),
			node("call", topology.NodeTypeLLMCall),
			node("top", topology.NodeTypeSystemPrompt),
		},
		Edges: []topology.Edge{{From: "loop", To: "call", Type: topology.EdgeContains}},
	}

	g, _ := Sanitize(topo)

	roots := g.Roots()
	if len(roots) != 2 || roots[0] != "loop" || roots[1] != "top" {
		t.Errorf("roots = %v, want [loop top]", roots)
	}
	kids := g.Children("loop")
	if len(kids) != 1 || kids[0] != "call" {
		t.Errorf("children(loop) = %v, want [call]", kids)
	}
}
