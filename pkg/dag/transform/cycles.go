package transform

import "github.com/inkog-io/dashboard-sub000/pkg/dag"

// BreakCycles removes back edges until the graph is acyclic, returning the
// number of edges removed. Back edges are found with a depth-first search
// using white/gray/black coloring, starting from source nodes and then
// sweeping any nodes left unvisited (which covers fully-cyclic components).
//
// The scanner's display graphs are usually acyclic already; cycles show up
// when merging collapses distinct call paths or the analyzer mislabels a
// loop-back edge. Removing the back edge keeps rank assignment well-defined.
func BreakCycles(g *dag.DAG) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]string{node, child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, e := range backEdges {
		g.RemoveEdge(e[0], e[1])
	}
	return len(backEdges)
}
