package transform

import "github.com/inkog-io/dashboard-sub000/pkg/dag"

// AssignRanks assigns nodes to horizontal ranks based on their depth in the
// graph, using longest-path layering via topological sort (Kahn's
// algorithm). Each node lands one rank below its deepest parent, so source
// nodes sit at rank 0 and every edge points strictly downward.
//
// Existing rank assignments are overwritten. The graph must be acyclic;
// run [BreakCycles] first. Nodes trapped in a residual cycle would never
// reach zero in-degree and stay at rank 0.
//
// Runs in O(V + E).
func AssignRanks(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	ranks := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if r := ranks[curr] + 1; r > ranks[child] {
				ranks[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRanks(ranks)
}
