package layout

import (
	"math"

	"github.com/inkog-io/dashboard-sub000/pkg/render"
	"github.com/inkog-io/dashboard-sub000/pkg/topology/transform"
)

// Cell spacing for the fallback grid.
const (
	gridCellW = 220
	gridCellH = 120
)

// gridFallback arranges every node in a simple grid with a column count of
// ceil(sqrt(n)). It is fully deterministic, ignores edges and containment
// for placement, and cannot fail. Edges are still emitted with their
// styles so the graph stays readable.
func (e *Engine) gridFallback(g *transform.Graph) render.Model {
	n := len(g.Nodes)
	if n == 0 {
		return render.Model{}
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))

	// Cells are top-left aligned: centers sit at the cell origin offset by
	// half the node's own size, so every node in a row shares the same top
	// edge regardless of kind.
	centers := make(map[string]placed, n)
	for i, node := range g.Nodes {
		kind := kindOf(node, g.Groups)
		size := kindSizes[kind]
		row, col := i/cols, i%cols
		centers[node.ID] = placed{
			cx:   float64(col)*gridCellW + size.W/2,
			cy:   float64(row)*gridCellH + size.H/2,
			size: size,
		}
	}
	// Nesting is dropped: grid cells do not contain each other.
	return e.assemble(g, centers, false)
}
