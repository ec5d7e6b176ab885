package layout

import (
	"sort"

	"github.com/inkog-io/dashboard-sub000/pkg/dag"
)

// maxOrderingPasses bounds the barycenter sweeps. Orderings converge or
// oscillate within a handful of passes on graphs of this size.
const maxOrderingPasses = 4

// orderRanks computes a left-to-right order for every rank that minimizes
// edge crossings: alternating barycenter sweeps scored against the best
// seen ordering, followed by adjacent-swap refinement. The initial order
// is the DAG's insertion order, which keeps the result deterministic.
func orderRanks(g *dag.DAG) map[int][]string {
	orders := make(map[int][]string)
	maxRank := g.MaxRank()
	for r := 0; r <= maxRank; r++ {
		for _, n := range g.NodesInRank(r) {
			orders[r] = append(orders[r], n.ID)
		}
	}
	if maxRank == 0 {
		return orders
	}

	best := cloneOrders(orders)
	bestScore := dag.CountCrossings(g, best)

	for pass := 0; pass < maxOrderingPasses && bestScore > 0; pass++ {
		// Downward: order each rank by the mean position of its parents.
		for r := 1; r <= maxRank; r++ {
			sortByBarycenter(g, orders[r], dag.PosMap(orders[r-1]), true)
		}
		// Upward: order each rank by the mean position of its children.
		for r := maxRank - 1; r >= 0; r-- {
			sortByBarycenter(g, orders[r], dag.PosMap(orders[r+1]), false)
		}
		for r := 0; r <= maxRank; r++ {
			refineRank(g, orders, r, maxRank)
		}

		if score := dag.CountCrossings(g, orders); score < bestScore {
			bestScore = score
			best = cloneOrders(orders)
		}
	}
	return best
}

// sortByBarycenter stably reorders one rank in place by the average
// position of each node's neighbors in the adjacent rank. Nodes with no
// neighbors there keep their current relative position.
func sortByBarycenter(g *dag.DAG, rank []string, adjPos map[string]int, useParents bool) {
	bary := make(map[string]float64, len(rank))
	for i, id := range rank {
		var nbrs []string
		if useParents {
			nbrs = g.Parents(id)
		} else {
			nbrs = g.Children(id)
		}
		sum, count := 0.0, 0
		for _, n := range nbrs {
			if p, ok := adjPos[n]; ok {
				sum += float64(p)
				count++
			}
		}
		if count == 0 {
			bary[id] = float64(i)
		} else {
			bary[id] = sum / float64(count)
		}
	}
	sort.SliceStable(rank, func(i, j int) bool { return bary[rank[i]] < bary[rank[j]] })
}

// refineRank swaps adjacent pairs within one rank whenever the swap lowers
// the crossings against both neighboring ranks combined.
func refineRank(g *dag.DAG, orders map[int][]string, r, maxRank int) {
	rank := orders[r]
	if len(rank) < 2 {
		return
	}
	var upPos, downPos map[string]int
	if r > 0 {
		upPos = dag.PosMap(orders[r-1])
	}
	if r < maxRank {
		downPos = dag.PosMap(orders[r+1])
	}

	improved := true
	for improved {
		improved = false
		for i := 0; i < len(rank)-1; i++ {
			left, right := rank[i], rank[i+1]
			current, swapped := 0, 0
			if upPos != nil {
				current += dag.CountPairCrossingsWithPos(g, left, right, upPos, true)
				swapped += dag.CountPairCrossingsWithPos(g, right, left, upPos, true)
			}
			if downPos != nil {
				current += dag.CountPairCrossingsWithPos(g, left, right, downPos, false)
				swapped += dag.CountPairCrossingsWithPos(g, right, left, downPos, false)
			}
			if swapped < current {
				rank[i], rank[i+1] = rank[i+1], rank[i]
				improved = true
			}
		}
	}
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range orders {
		cp := make([]string, len(ids))
		copy(cp, ids)
		out[r] = cp
	}
	return out
}
