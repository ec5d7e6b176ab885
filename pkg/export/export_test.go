package export

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

func TestFlowchart_ShapesByType(t *testing.T) {
	top := &topology.Topology{
		Nodes: []topology.Node{
			{ID: "llm", Type: topology.NodeTypeLLMCall, Label: "Plan"},
			{ID: "loop", Type: topology.NodeTypeLoop, Label: "Agent"},
			{ID: "tool", Type: topology.NodeTypeToolCall, Label: "Search"},
		},
	}
	out := Flowchart(top)
	for _, want := range []string{
		"graph TD",
		"llm[[Plan]]",
		"loop((Agent))",
		"tool[Search]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("flowchart missing %q:\n%s", want, out)
		}
	}
}

func TestFlowchart_LoopWithRiskReasons(t *testing.T) {
	// A risky loop gets a style directive in its risk color, and its
	// contains edge produces no edge line.
	top := &topology.Topology{
		Nodes: []topology.Node{
			{ID: "loop", Type: topology.NodeTypeLoop, Label: "Agent",
				RiskLevel: topology.RiskHigh, RiskReasons: []string{"weak termination"}},
			{ID: "llm", Type: topology.NodeTypeLLMCall, Label: "Plan"},
		},
		Edges: []topology.Edge{
			{From: "loop", To: "llm", Type: topology.EdgeContains},
		},
	}
	out := Flowchart(top)
	if want := "style loop fill:" + topology.RiskHigh.Color(); !strings.Contains(out, want) {
		t.Errorf("flowchart missing %q:\n%s", want, out)
	}
	if strings.Contains(out, "-->") {
		t.Errorf("contains edge leaked into flowchart:\n%s", out)
	}
}

func TestFlowchart_EdgeLabels(t *testing.T) {
	top := &topology.Topology{
		Nodes: []topology.Node{
			{ID: "a", Type: topology.NodeTypeLLMCall},
			{ID: "b", Type: topology.NodeTypeToolCall},
		},
		Edges: []topology.Edge{
			{From: "a", To: "b", Type: topology.EdgeDataFlow, Label: "query"},
		},
	}
	if out := Flowchart(top); !strings.Contains(out, "a -->|query| b") {
		t.Errorf("labeled edge missing:\n%s", out)
	}
}

func TestFlowchart_StyleForEveryNode(t *testing.T) {
	top := &topology.Topology{
		Nodes: []topology.Node{
			{ID: "a", Type: topology.NodeTypeToolCall, RiskLevel: topology.RiskCritical},
			{ID: "b", Type: topology.NodeTypeToolCall}, // zero risk, default color
		},
	}
	out := Flowchart(top)
	if got := strings.Count(out, "style "); got != 2 {
		t.Errorf("style directives = %d, want 2", got)
	}
}

func TestMermaidID_StripsSyntax(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain-id_1", "plain-id_1"},
		{"node (1)", "node__1_"},
		{"a|b", "a_b"},
	}
	for _, tt := range tests {
		if got := mermaidID(tt.in); got != tt.want {
			t.Errorf("mermaidID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVector_StandaloneSVG(t *testing.T) {
	top := &topology.Topology{
		Nodes: []topology.Node{
			{ID: "agent", Type: topology.NodeTypeLoop, Label: "Agent"},
			{ID: "llm", Type: topology.NodeTypeLLMCall, Label: "Plan", RiskLevel: topology.RiskMedium},
		},
		Edges: []topology.Edge{
			{From: "agent", To: "llm", Type: topology.EdgeContains},
		},
	}
	out := string(Vector(top))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Fatalf("not a standalone SVG document:\n%.120s", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Error("SVG not terminated")
	}
	for _, want := range []string{"Agent", "Plan", topology.RiskMedium.Color()} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}

func TestRaster_FallsBackToVector(t *testing.T) {
	orig := rasterize
	defer func() { rasterize = orig }()

	top := &topology.Topology{
		Nodes: []topology.Node{{ID: "a", Type: topology.NodeTypeLLMCall, Label: "Plan"}},
	}

	t.Run("error", func(t *testing.T) {
		rasterize = func(context.Context, string) ([]byte, error) {
			return nil, errors.New("no encoder")
		}
		a := Raster(context.Background(), top)
		if a.Format != FormatSVG {
			t.Fatalf("format = %q, want %q", a.Format, FormatSVG)
		}
		if !strings.Contains(string(a.Data), "<svg") {
			t.Error("fallback artifact is not SVG")
		}
	})

	t.Run("panic", func(t *testing.T) {
		rasterize = func(context.Context, string) ([]byte, error) {
			panic("encoder exploded")
		}
		a := Raster(context.Background(), top)
		if a.Format != FormatSVG {
			t.Fatalf("format = %q, want %q", a.Format, FormatSVG)
		}
	})

	t.Run("success", func(t *testing.T) {
		rasterize = func(context.Context, string) ([]byte, error) {
			return []byte{0x89, 'P', 'N', 'G'}, nil
		}
		a := Raster(context.Background(), top)
		if a.Format != FormatPNG {
			t.Fatalf("format = %q, want %q", a.Format, FormatPNG)
		}
		if a.ID == "" {
			t.Error("artifact missing id")
		}
	})
}

func TestToDOT_ContainsEdgesDashed(t *testing.T) {
	top := &topology.Topology{
		Nodes: []topology.Node{
			{ID: "agent", Type: topology.NodeTypeLoop},
			{ID: "llm", Type: topology.NodeTypeLLMCall, RiskLevel: topology.RiskCritical},
		},
		Edges: []topology.Edge{
			{From: "agent", To: "llm", Type: topology.EdgeContains},
			{From: "llm", To: "agent", Type: topology.EdgeDataFlow},
		},
	}
	out := ToDOT(top)
	if !strings.Contains(out, `"agent" -> "llm" [style=dashed`) {
		t.Errorf("contains edge not dashed:\n%s", out)
	}
	if !strings.Contains(out, `"llm" -> "agent";`) {
		t.Errorf("data flow edge missing:\n%s", out)
	}
	if !strings.Contains(out, `fillcolor="`+topology.RiskCritical.Color()+`"`) {
		t.Errorf("risk fill color missing:\n%s", out)
	}
}
