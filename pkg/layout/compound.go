package layout

import (
	"github.com/inkog-io/dashboard-sub000/pkg/dag"
	dagtransform "github.com/inkog-io/dashboard-sub000/pkg/dag/transform"
	"github.com/inkog-io/dashboard-sub000/pkg/render"
	"github.com/inkog-io/dashboard-sub000/pkg/topology/transform"
)

// scopeLayout is the result of laying out one containment scope: the
// members' center positions relative to the scope's content origin, plus
// the content bounding box.
type scopeLayout struct {
	centers map[string]placed
	w, h    float64
}

// layouter carries the shared state of one position pass. Scopes are laid
// out bottom-up so every group knows its final size before its parent
// scope places it.
type layouter struct {
	cfg      Config
	graph    *transform.Graph
	byID     map[string]transform.Node
	children map[string][]string // containment children in declaration order
	scopes   map[string]scopeLayout
	sizes    map[string]render.Size
}

// position computes center-based absolute coordinates for every node.
func (e *Engine) position(g *transform.Graph) map[string]placed {
	l := &layouter{
		cfg:      e.Config,
		graph:    g,
		byID:     make(map[string]transform.Node, len(g.Nodes)),
		children: make(map[string][]string),
		scopes:   make(map[string]scopeLayout),
		sizes:    make(map[string]render.Size, len(g.Nodes)),
	}
	var roots []string
	for _, n := range g.Nodes {
		l.byID[n.ID] = n
		if p, ok := g.Parent[n.ID]; ok {
			l.children[p] = append(l.children[p], n.ID)
		} else {
			roots = append(roots, n.ID)
		}
	}

	top := l.layoutScope("", roots)

	// Walk the forest top-down, translating each scope's relative centers
	// into absolute coordinates.
	abs := make(map[string]placed, len(g.Nodes))
	l.flatten(abs, "", top, 0, 0)
	return abs
}

// flatten places the members of one scope at an absolute content origin,
// then recurses into each group member.
func (l *layouter) flatten(abs map[string]placed, owner string, sl scopeLayout, originX, originY float64) {
	for id, p := range sl.centers {
		abs[id] = placed{cx: originX + p.cx, cy: originY + p.cy, size: p.size}
		if inner, ok := l.scopes[id]; ok {
			size := l.sizes[id]
			childX := originX + p.cx - size.W/2 + l.cfg.GroupPadding
			childY := originY + p.cy - size.H/2 + l.cfg.GroupHeader
			// Center the content when the group was padded up to its
			// minimum dimensions.
			childX += (size.W - 2*l.cfg.GroupPadding - inner.w) / 2
			childY += (size.H - l.cfg.GroupHeader - l.cfg.GroupPadding - inner.h) / 2
			l.flatten(abs, id, inner, childX, childY)
		}
	}
}

// sizeOf resolves a node's layout size, computing group sizes recursively
// from their content. Containment cycles were broken during sanitization,
// so the recursion terminates.
func (l *layouter) sizeOf(id string) render.Size {
	if s, ok := l.sizes[id]; ok {
		return s
	}
	n := l.byID[id]
	kind := kindOf(n, l.graph.Groups)
	if kind != render.KindGroup {
		s := kindSizes[kind]
		l.sizes[id] = s
		return s
	}
	sl := l.layoutScope(id, l.children[id])
	l.scopes[id] = sl
	s := render.Size{
		W: sl.w + 2*l.cfg.GroupPadding,
		H: sl.h + l.cfg.GroupHeader + l.cfg.GroupPadding,
	}
	if s.W < l.cfg.MinGroupW {
		s.W = l.cfg.MinGroupW
	}
	if s.H < l.cfg.MinGroupH {
		s.H = l.cfg.MinGroupH
	}
	l.sizes[id] = s
	return s
}

// layoutScope runs the layered algorithm over the direct members of one
// scope. Edges between nested nodes are lifted to their representatives
// inside the scope so cross-group flows still shape the ordering.
func (l *layouter) layoutScope(owner string, members []string) scopeLayout {
	sl := scopeLayout{centers: make(map[string]placed, len(members))}
	if len(members) == 0 {
		return sl
	}

	member := make(map[string]bool, len(members))
	for _, id := range members {
		member[id] = true
	}

	g := dag.New()
	for _, id := range members {
		size := l.sizeOf(id)
		if err := g.AddNode(dag.Node{ID: id, W: size.W, H: size.H}); err != nil {
			panic(err)
		}
	}

	type pair struct{ from, to string }
	seen := make(map[pair]bool)
	for _, edge := range l.graph.Edges {
		from, ok := l.repIn(edge.From, owner, member)
		if !ok {
			continue
		}
		to, ok := l.repIn(edge.To, owner, member)
		if !ok {
			continue
		}
		if from == to || seen[pair{from, to}] {
			continue
		}
		seen[pair{from, to}] = true
		if err := g.AddEdge(dag.Edge{From: from, To: to}); err != nil {
			panic(err)
		}
	}

	dagtransform.BreakCycles(g)
	dagtransform.AssignRanks(g)
	orders := orderRanks(g)

	// Rank rows top to bottom. Each row is as tall as its tallest member
	// and the row's nodes are packed left to right, then centered on the
	// widest row.
	maxRank := g.MaxRank()
	rowWidth := make([]float64, maxRank+1)
	rowHeight := make([]float64, maxRank+1)
	var scopeW float64
	for r := 0; r <= maxRank; r++ {
		var w float64
		for i, id := range orders[r] {
			n, _ := g.Node(id)
			if i > 0 {
				w += l.cfg.NodeSep
			}
			w += n.W
			if n.H > rowHeight[r] {
				rowHeight[r] = n.H
			}
		}
		rowWidth[r] = w
		if w > scopeW {
			scopeW = w
		}
	}

	var y float64
	for r := 0; r <= maxRank; r++ {
		x := (scopeW - rowWidth[r]) / 2
		for _, id := range orders[r] {
			n, _ := g.Node(id)
			sl.centers[id] = placed{
				cx:   x + n.W/2,
				cy:   y + rowHeight[r]/2,
				size: l.sizes[id],
			}
			x += n.W + l.cfg.NodeSep
		}
		y += rowHeight[r]
		if r < maxRank {
			y += l.cfg.RankSep
		}
	}

	sl.w = scopeW
	sl.h = y
	return sl
}

// repIn lifts a node to its ancestor that is a direct member of the scope.
// It reports false when the node lives outside the scope entirely, or when
// the parent chain revisits a node. Sanitization breaks containment cycles,
// but the walk must still terminate on raw input that skipped it.
func (l *layouter) repIn(id, owner string, member map[string]bool) (string, bool) {
	visited := make(map[string]bool)
	cur := id
	for !visited[cur] {
		if member[cur] {
			return cur, true
		}
		visited[cur] = true
		p, ok := l.graph.Parent[cur]
		if !ok || p == owner {
			return "", false
		}
		cur = p
	}
	return "", false
}
