package layout

import (
	"math"
	"testing"
	"time"

	"github.com/inkog-io/dashboard-sub000/pkg/render"
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
	"github.com/inkog-io/dashboard-sub000/pkg/topology/ingest"
	"github.com/inkog-io/dashboard-sub000/pkg/topology/transform"
)

func node(id string, typ topology.NodeType) transform.Node {
	return transform.Node{Node: topology.Node{ID: id, Type: typ, Label: id}}
}

func edge(from, to string, typ topology.EdgeType) topology.Edge {
	return topology.Edge{From: from, To: to, Type: typ}
}

func findNode(t *testing.T, m render.Model, id string) render.Node {
	t.Helper()
	n, ok := m.Node(id)
	if !ok {
		t.Fatalf("node %q missing from model", id)
	}
	return n
}

func TestCompute_Empty(t *testing.T) {
	m, fell := New(Config{}).Compute(&transform.Graph{})
	if fell {
		t.Fatal("empty graph should not use the fallback")
	}
	if len(m.Nodes) != 0 || len(m.Edges) != 0 {
		t.Fatalf("expected empty model, got %d nodes %d edges", len(m.Nodes), len(m.Edges))
	}
}

func TestCompute_RanksFlowDownward(t *testing.T) {
	g := &transform.Graph{
		Nodes: []transform.Node{
			node("prompt", topology.NodeTypeSystemPrompt),
			node("llm", topology.NodeTypeLLMCall),
			node("tool", topology.NodeTypeToolCall),
		},
		Edges: []topology.Edge{
			edge("prompt", "llm", topology.EdgeDataFlow),
			edge("llm", "tool", topology.EdgeDataFlow),
		},
		Parent: map[string]string{},
		Groups: map[string]bool{},
	}

	m, fell := New(Config{}).Compute(g)
	if fell {
		t.Fatal("layout fell back on a well-formed graph")
	}
	prompt := findNode(t, m, "prompt")
	llm := findNode(t, m, "llm")
	tool := findNode(t, m, "tool")
	if !(prompt.Position.Y < llm.Position.Y && llm.Position.Y < tool.Position.Y) {
		t.Errorf("expected prompt above llm above tool, got Y %v %v %v",
			prompt.Position.Y, llm.Position.Y, tool.Position.Y)
	}
	if len(m.Edges) != 2 {
		t.Fatalf("edges = %d, want 2", len(m.Edges))
	}
}

func TestCompute_GhostsStayAtTop(t *testing.T) {
	ghost := transform.Node{
		Node:    topology.Node{ID: "ghost-human_oversight", Type: topology.NodeTypeHumanApproval, RiskLevel: topology.RiskCritical},
		Ghost:   true,
		Control: topology.ControlHumanOversight,
	}
	g := &transform.Graph{
		Nodes: []transform.Node{
			ghost,
			node("llm", topology.NodeTypeLLMCall),
			node("tool", topology.NodeTypeToolCall),
		},
		Edges:  []topology.Edge{edge("llm", "tool", topology.EdgeDataFlow)},
		Parent: map[string]string{},
		Groups: map[string]bool{},
	}

	m, _ := New(Config{}).Compute(g)
	gn := findNode(t, m, "ghost-human_oversight")
	if gn.Kind != render.KindGhost {
		t.Fatalf("kind = %q, want %q", gn.Kind, render.KindGhost)
	}
	tool := findNode(t, m, "tool")
	if gn.Position.Y >= tool.Position.Y {
		t.Errorf("ghost Y %v should be above the edge sink Y %v", gn.Position.Y, tool.Position.Y)
	}
}

func TestCompute_GroupContainsChildren(t *testing.T) {
	g := &transform.Graph{
		Nodes: []transform.Node{
			node("loop", topology.NodeTypeLoop),
			node("llm", topology.NodeTypeLLMCall),
			node("tool", topology.NodeTypeToolCall),
		},
		Edges:  []topology.Edge{edge("llm", "tool", topology.EdgeDataFlow)},
		Parent: map[string]string{"llm": "loop", "tool": "loop"},
		Groups: map[string]bool{"loop": true},
	}

	m, fell := New(Config{}).Compute(g)
	if fell {
		t.Fatal("layout fell back on a well-formed graph")
	}
	loop := findNode(t, m, "loop")
	if loop.Kind != render.KindGroup {
		t.Fatalf("loop kind = %q, want %q", loop.Kind, render.KindGroup)
	}
	cfg := DefaultConfig()
	if loop.Size.W < cfg.MinGroupW || loop.Size.H < cfg.MinGroupH {
		t.Errorf("group size %+v below minimum %vx%v", loop.Size, cfg.MinGroupW, cfg.MinGroupH)
	}
	for _, id := range []string{"llm", "tool"} {
		child := findNode(t, m, id)
		if child.ParentID != "loop" {
			t.Errorf("%s parent = %q, want loop", id, child.ParentID)
		}
		if child.Position.X < loop.Position.X ||
			child.Position.Y < loop.Position.Y ||
			child.Position.X+child.Size.W > loop.Position.X+loop.Size.W ||
			child.Position.Y+child.Size.H > loop.Position.Y+loop.Size.H {
			t.Errorf("%s at %+v size %+v escapes group box at %+v size %+v",
				id, child.Position, child.Size, loop.Position, loop.Size)
		}
	}
}

func TestCompute_GroupExpandsBeyondMinimum(t *testing.T) {
	nodes := []transform.Node{node("loop", topology.NodeTypeLoop)}
	parent := map[string]string{}
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		nodes = append(nodes, node(id, topology.NodeTypeToolCall))
		parent[id] = "loop"
	}
	g := &transform.Graph{
		Nodes:  nodes,
		Parent: parent,
		Groups: map[string]bool{"loop": true},
	}

	m, _ := New(Config{}).Compute(g)
	loop := findNode(t, m, "loop")
	// Five 160-wide children in one rank need far more than the minimum.
	if loop.Size.W <= DefaultConfig().MinGroupW {
		t.Errorf("group width %v did not expand past minimum for 5 children", loop.Size.W)
	}
}

func TestCompute_CrossGroupEdgeLifted(t *testing.T) {
	g := &transform.Graph{
		Nodes: []transform.Node{
			node("loop", topology.NodeTypeLoop),
			node("inner", topology.NodeTypeLLMCall),
			node("sink", topology.NodeTypeToolCall),
		},
		Edges:  []topology.Edge{edge("inner", "sink", topology.EdgeDataFlow)},
		Parent: map[string]string{"inner": "loop"},
		Groups: map[string]bool{"loop": true},
	}

	m, fell := New(Config{}).Compute(g)
	if fell {
		t.Fatal("layout fell back on a well-formed graph")
	}
	loop := findNode(t, m, "loop")
	sink := findNode(t, m, "sink")
	if loop.Position.Y >= sink.Position.Y {
		t.Errorf("edge out of the group should rank the group above the sink: loop Y %v, sink Y %v",
			loop.Position.Y, sink.Position.Y)
	}
	if len(m.Edges) != 1 || m.Edges[0].Source != "inner" || m.Edges[0].Target != "sink" {
		t.Fatalf("model edges = %+v, want the original inner->sink edge", m.Edges)
	}
}

func TestCompute_NeverPanicsOnHostileInput(t *testing.T) {
	// A graph that skipped sanitization: edge to a missing node, a
	// containment self-loop, and a group that is its own ancestor.
	g := &transform.Graph{
		Nodes: []transform.Node{
			node("a", topology.NodeTypeLLMCall),
			node("b", topology.NodeTypeLoop),
		},
		Edges:  []topology.Edge{edge("a", "missing", topology.EdgeDataFlow)},
		Parent: map[string]string{"a": "b", "b": "a"},
		Groups: map[string]bool{"a": true, "b": true},
	}

	m, _ := New(Config{}).Compute(g)
	if len(m.Nodes) != 2 {
		t.Fatalf("model nodes = %d, want all 2", len(m.Nodes))
	}
	for _, n := range m.Nodes {
		for _, v := range []float64{n.Position.X, n.Position.Y, n.Size.W, n.Size.H} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("node %s has non-finite geometry: %+v %+v", n.ID, n.Position, n.Size)
			}
		}
	}
}

func TestCompute_ContainmentCycleWithInboundEdge(t *testing.T) {
	// Two groups contain each other and a real edge points into the
	// cycle, so edge lifting has to walk the cyclic parent chain.
	g := &transform.Graph{
		Nodes: []transform.Node{
			node("a", topology.NodeTypeLLMCall),
			node("b", topology.NodeTypeLoop),
			node("c", topology.NodeTypeLoop),
		},
		Edges:  []topology.Edge{edge("a", "b", topology.EdgeDataFlow)},
		Parent: map[string]string{"b": "c", "c": "b"},
		Groups: map[string]bool{"b": true, "c": true},
	}

	done := make(chan render.Model, 1)
	go func() {
		m, _ := New(Config{}).Compute(g)
		done <- m
	}()

	select {
	case m := <-done:
		if len(m.Nodes) != 3 {
			t.Fatalf("model nodes = %d, want all 3", len(m.Nodes))
		}
		for _, n := range m.Nodes {
			for _, v := range []float64{n.Position.X, n.Position.Y} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("node %s has non-finite position", n.ID)
				}
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Compute did not terminate on a containment cycle")
	}
}

func TestGridFallback_Deterministic(t *testing.T) {
	g := &transform.Graph{
		Nodes: []transform.Node{
			node("a", topology.NodeTypeLLMCall),
			node("b", topology.NodeTypeToolCall),
			node("c", topology.NodeTypeToolCall),
			node("d", topology.NodeTypeMemoryAccess),
			node("e", topology.NodeTypeAuditLog),
		},
		Edges:  []topology.Edge{edge("a", "b", topology.EdgeDataFlow)},
		Parent: map[string]string{"b": "a"},
		Groups: map[string]bool{"a": true},
	}

	e := New(Config{})
	m1 := e.gridFallback(g)
	m2 := e.gridFallback(g)
	if len(m1.Nodes) != 5 {
		t.Fatalf("fallback nodes = %d, want 5", len(m1.Nodes))
	}
	// ceil(sqrt(5)) = 3 columns: first three share a row, the fourth wraps.
	// The first row mixes a group with leaves; cells are top-aligned so the
	// kind sizes must not skew the shared top edge.
	if m1.Nodes[0].Position.Y != m1.Nodes[2].Position.Y {
		t.Error("first row not aligned")
	}
	if m1.Nodes[0].Position.Y != 0 {
		t.Errorf("first row top edge = %v, want 0", m1.Nodes[0].Position.Y)
	}
	if m1.Nodes[1].Position.X != gridCellW {
		t.Errorf("second column left edge = %v, want %v", m1.Nodes[1].Position.X, float64(gridCellW))
	}
	if m1.Nodes[3].Position.Y <= m1.Nodes[0].Position.Y {
		t.Error("fourth node did not wrap to a new row")
	}
	for i := range m1.Nodes {
		if m1.Nodes[i].Position != m2.Nodes[i].Position {
			t.Fatalf("fallback not deterministic at node %d", i)
		}
		if m1.Nodes[i].ParentID != "" {
			t.Errorf("fallback node %s kept nesting", m1.Nodes[i].ID)
		}
	}
	if len(m1.Edges) != 1 {
		t.Fatalf("fallback edges = %d, want 1", len(m1.Edges))
	}
}

func TestCompute_FromSanitizedTopology(t *testing.T) {
	top := &topology.Topology{
		Nodes: []topology.Node{
			{ID: "agent", Type: topology.NodeTypeLoop, Label: "Agent"},
			{ID: "llm", Type: topology.NodeTypeLLMCall, Label: "Plan"},
			{ID: "tool", Type: topology.NodeTypeToolCall, Label: "Search"},
		},
		Edges: []topology.Edge{
			{From: "agent", To: "llm", Type: topology.EdgeContains},
			{From: "agent", To: "tool", Type: topology.EdgeContains},
			{From: "llm", To: "tool", Type: topology.EdgeDataFlow},
			{From: "tool", To: "gone", Type: topology.EdgeDataFlow}, // dropped
		},
	}
	ig, _ := ingest.Sanitize(top)
	g := transform.InjectGhosts(transform.Merge(transform.FromIngest(ig)))

	m, fell := New(Config{}).Compute(g)
	if fell {
		t.Fatal("layout fell back after sanitization")
	}
	// Three real nodes plus four ghosts for the all-false governance flags.
	if got := len(m.Nodes); got != 7 {
		t.Fatalf("model nodes = %d, want 7", got)
	}
	if got := len(m.Edges); got != 1 {
		t.Fatalf("model edges = %d, want 1", got)
	}
}
