package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

// Merge collapses groups of structurally-identical leaf nodes into
// supernodes to reduce visual clutter from repeated substructure.
//
// A node is merge-eligible only if its type is mergeable (SystemPrompt,
// MemoryAccess, Delegation), it has at least one outgoing non-containment
// edge, and it is not itself a container. Nodes are grouped by their type
// plus the sorted set of outgoing targets; every group of two or more
// collapses into one supernode whose ID is derived from the first member.
// Edges touching a merged member are redirected to the supernode, then
// deduplicated by (source, target) keeping the first occurrence.
//
// Merging is a no-op on graphs with no duplicate structure: size-1 groups
// and non-eligible nodes pass through unchanged.
func Merge(g *Graph) *Graph {
	outgoing := make(map[string][]string)
	for _, e := range g.Edges {
		outgoing[e.From] = append(outgoing[e.From], e.To)
	}

	// Group eligible nodes by (type, sorted target set), preserving the
	// order in which groups are first seen.
	type group struct {
		typ     topology.NodeType
		members []Node
	}
	groups := make(map[string]*group)
	var keyOrder []string
	for _, n := range g.Nodes {
		if n.Ghost || !n.Type.Mergeable() || g.Groups[n.ID] {
			continue
		}
		targets := outgoing[n.ID]
		if len(targets) == 0 {
			continue
		}
		sorted := append([]string(nil), targets...)
		sort.Strings(sorted)
		key := string(n.Type) + "|" + strings.Join(sorted, ",")
		if groups[key] == nil {
			groups[key] = &group{typ: n.Type}
			keyOrder = append(keyOrder, key)
		}
		groups[key].members = append(groups[key].members, n)
	}

	// Build the member -> supernode redirection table.
	redirect := make(map[string]string)
	supernodes := make(map[string]Node) // keyed by first member ID
	for _, key := range keyOrder {
		grp := groups[key]
		if len(grp.members) < 2 {
			continue
		}
		first := grp.members[0]
		superID := "merged-" + first.ID
		super := Node{
			Node: topology.Node{
				ID:        superID,
				Type:      grp.typ,
				Label:     fmt.Sprintf("%s (%d)", grp.typ.Label(), len(grp.members)),
				RiskLevel: maxRisk(grp.members),
				Location:  first.Location,
			},
		}
		for _, m := range grp.members {
			super.Merged = append(super.Merged, topology.NodeRef{
				ID:       m.ID,
				Label:    m.Label,
				Location: m.Location,
			})
			redirect[m.ID] = superID
		}
		supernodes[first.ID] = super
	}

	if len(supernodes) == 0 {
		return g
	}

	out := &Graph{
		Parent:     make(map[string]string),
		Groups:     make(map[string]bool),
		Governance: g.Governance,
	}

	// Rebuild the node list: the supernode takes the first member's slot,
	// remaining members disappear.
	for _, n := range g.Nodes {
		if super, ok := supernodes[n.ID]; ok {
			out.Nodes = append(out.Nodes, super)
			continue
		}
		if _, merged := redirect[n.ID]; merged {
			continue
		}
		out.Nodes = append(out.Nodes, n)
	}

	// Redirect and deduplicate edges. Self-loops created by merging
	// intra-group structure are dropped.
	seen := make(map[[2]string]bool)
	for _, e := range g.Edges {
		if to, ok := redirect[e.From]; ok {
			e.From = to
		}
		if to, ok := redirect[e.To]; ok {
			e.To = to
		}
		if e.From == e.To {
			continue
		}
		key := [2]string{e.From, e.To}
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Edges = append(out.Edges, e)
	}

	// A supernode keeps a containment parent only when every member agreed
	// on it; otherwise it floats at the top level.
	memberParents := make(map[string][]string)
	for child, parent := range g.Parent {
		if superID, ok := redirect[child]; ok {
			memberParents[superID] = append(memberParents[superID], parent)
			continue
		}
		out.Parent[child] = parent
	}
	for _, super := range supernodes {
		parents := memberParents[super.ID]
		if len(parents) == len(super.Merged) && allEqual(parents) {
			out.Parent[super.ID] = parents[0]
		}
	}
	for _, p := range out.Parent {
		out.Groups[p] = true
	}

	return out
}

func maxRisk(members []Node) topology.RiskLevel {
	top := topology.RiskSafe
	for _, m := range members {
		if m.RiskLevel.AtLeast(top) {
			top = m.RiskLevel
		}
	}
	return top
}

func allEqual(ss []string) bool {
	for _, s := range ss[1:] {
		if s != ss[0] {
			return false
		}
	}
	return true
}
