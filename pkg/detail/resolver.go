package detail

import (
	"github.com/inkog-io/dashboard-sub000/pkg/render"
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

// proximityWindow is the maximum line distance for heuristic finding
// matches when no explicit node reference exists.
const proximityWindow = 15

// Details is the payload behind the dashboard's node detail panel.
type Details struct {
	Findings      []topology.Finding `json:"findings"`
	MergedMembers []topology.NodeRef `json:"merged_members,omitempty"`
	Remediation   *Guide             `json:"remediation,omitempty"`
}

// Resolve maps a selected render node to its related findings in two
// phases. Findings that explicitly reference the node's ID win outright;
// only when none exist does the resolver fall back to findings in the same
// file within the proximity window of the node's recorded line.
//
// Supernodes additionally carry their merged member list, and ghost nodes
// carry a remediation guide for the missing control.
func Resolve(node render.Node, findings []topology.Finding) Details {
	d := Details{Findings: matchFindings(node, findings)}
	if len(node.MergedNodes) > 0 {
		d.MergedMembers = node.MergedNodes
	}
	if node.Kind == render.KindGhost {
		g := GuideFor(node.MissingControl)
		d.Remediation = &g
	}
	return d
}

func matchFindings(node render.Node, findings []topology.Finding) []topology.Finding {
	var exact []topology.Finding
	for _, f := range findings {
		if f.References(node.ID) {
			exact = append(exact, f)
		}
	}
	if len(exact) > 0 {
		return exact
	}

	if node.Location == nil || node.Location.File == "" {
		return nil
	}
	var near []topology.Finding
	for _, f := range findings {
		if f.File != node.Location.File {
			continue
		}
		if delta := f.Line - node.Location.Line; delta >= -proximityWindow && delta <= proximityWindow {
			near = append(near, f)
		}
	}
	return near
}
