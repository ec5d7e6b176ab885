package detail

import (
	"testing"

	"github.com/inkog-io/dashboard-sub000/pkg/render"
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

func leafAt(id, file string, line int) render.Node {
	return render.Node{
		ID:       id,
		Kind:     render.KindLeaf,
		Location: &topology.Location{File: file, Line: line},
	}
}

func TestResolve_ExactReferenceWinsOutright(t *testing.T) {
	// The explicit reference sits 200 lines away from the node; it must be
	// returned and the nearby heuristic candidate suppressed.
	node := leafAt("x", "agent.py", 10)
	findings := []topology.Finding{
		{ID: "f1", Title: "explicit", File: "agent.py", Line: 210, NodeIDs: []string{"x"}},
		{ID: "f2", Title: "nearby", File: "agent.py", Line: 12},
	}

	d := Resolve(node, findings)
	if len(d.Findings) != 1 || d.Findings[0].ID != "f1" {
		t.Fatalf("findings = %+v, want only f1", d.Findings)
	}
}

func TestResolve_ProximityFallback(t *testing.T) {
	node := leafAt("x", "agent.py", 100)
	findings := []topology.Finding{
		{ID: "edge-low", File: "agent.py", Line: 85},   // exactly -15
		{ID: "edge-high", File: "agent.py", Line: 115}, // exactly +15
		{ID: "too-far", File: "agent.py", Line: 116},
		{ID: "other-file", File: "tools.py", Line: 100},
		{ID: "referenced-elsewhere", File: "agent.py", Line: 100, NodeIDs: []string{"y"}},
	}

	d := Resolve(node, findings)
	want := map[string]bool{"edge-low": true, "edge-high": true, "referenced-elsewhere": true}
	if len(d.Findings) != len(want) {
		t.Fatalf("findings = %+v, want %d in-window matches", d.Findings, len(want))
	}
	for _, f := range d.Findings {
		if !want[f.ID] {
			t.Errorf("unexpected finding %q", f.ID)
		}
	}
}

func TestResolve_NoLocationNoHeuristics(t *testing.T) {
	node := render.Node{ID: "x", Kind: render.KindLeaf}
	findings := []topology.Finding{{ID: "f1", File: "agent.py", Line: 5}}

	if d := Resolve(node, findings); len(d.Findings) != 0 {
		t.Fatalf("findings = %+v, want none without a location", d.Findings)
	}
}

func TestResolve_SupernodeMembers(t *testing.T) {
	node := render.Node{
		ID:   "merged-a",
		Kind: render.KindSupernode,
		MergedNodes: []topology.NodeRef{
			{ID: "a", Label: "Prompt A"},
			{ID: "b", Label: "Prompt B"},
		},
	}

	d := Resolve(node, nil)
	if len(d.MergedMembers) != 2 {
		t.Fatalf("merged members = %+v, want 2", d.MergedMembers)
	}
	if d.Remediation != nil {
		t.Error("supernode should not carry remediation")
	}
}

func TestResolve_GhostRemediation(t *testing.T) {
	node := render.Node{
		ID:             "ghost-rate_limiting",
		Kind:           render.KindGhost,
		MissingControl: topology.ControlRateLimiting,
	}

	d := Resolve(node, nil)
	if d.Remediation == nil {
		t.Fatal("ghost node missing remediation guide")
	}
	if d.Remediation.Title != "Add rate limiting" {
		t.Errorf("title = %q", d.Remediation.Title)
	}
	if len(d.Remediation.Steps) == 0 || d.Remediation.Example == "" {
		t.Error("guide incomplete")
	}
}

func TestGuideFor_UnknownControlGetsGeneric(t *testing.T) {
	g := GuideFor(topology.Control("quantum_isolation"))
	if g.Title != genericGuide.Title {
		t.Errorf("title = %q, want the generic guide", g.Title)
	}
	if len(g.Steps) == 0 {
		t.Error("generic guide has no steps")
	}
}
