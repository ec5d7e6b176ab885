package layout

import (
	"github.com/inkog-io/dashboard-sub000/pkg/render"
	"github.com/inkog-io/dashboard-sub000/pkg/topology/transform"
)

// Config holds the spacing knobs for the hierarchical layout.
// The zero value is not usable - use DefaultConfig and override fields.
type Config struct {
	RankSep      float64 // vertical gap between ranks
	NodeSep      float64 // horizontal gap between nodes in a rank
	GroupPadding float64 // inset between a group's border and its children
	GroupHeader  float64 // extra space at the top of a group for its label

	// Minimum dimensions for compound/group nodes so small loops still
	// read as containers.
	MinGroupW float64
	MinGroupH float64
}

// DefaultConfig returns the spacing used by the dashboard.
func DefaultConfig() Config {
	return Config{
		RankSep:      70,
		NodeSep:      40,
		GroupPadding: 30,
		GroupHeader:  34,
		MinGroupW:    340,
		MinGroupH:    220,
	}
}

// Per-kind node sizes used for layout spacing.
var kindSizes = map[render.Kind]render.Size{
	render.KindLeaf:      {W: 160, H: 60},
	render.KindSupernode: {W: 180, H: 65},
	render.KindGhost:     {W: 180, H: 55},
	render.KindGroup:     {W: 340, H: 220},
}

// Engine computes 2D positions for a display graph using a layered
// (Sugiyama-style) algorithm with compound-node support. Compute never
// fails: any internal error degrades to a deterministic grid fallback.
//
// Engine is stateless and safe for concurrent use.
type Engine struct {
	Config Config
}

// New creates an engine with the given config. Zero spacing fields are
// filled from DefaultConfig.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.RankSep <= 0 {
		cfg.RankSep = def.RankSep
	}
	if cfg.NodeSep <= 0 {
		cfg.NodeSep = def.NodeSep
	}
	if cfg.GroupPadding <= 0 {
		cfg.GroupPadding = def.GroupPadding
	}
	if cfg.GroupHeader <= 0 {
		cfg.GroupHeader = def.GroupHeader
	}
	if cfg.MinGroupW <= 0 {
		cfg.MinGroupW = def.MinGroupW
	}
	if cfg.MinGroupH <= 0 {
		cfg.MinGroupH = def.MinGroupH
	}
	return &Engine{Config: cfg}
}

// kindOf resolves the render kind of a display node.
func kindOf(n transform.Node, groups map[string]bool) render.Kind {
	switch {
	case n.Ghost:
		return render.KindGhost
	case n.IsSupernode():
		return render.KindSupernode
	case groups[n.ID]:
		return render.KindGroup
	default:
		return render.KindLeaf
	}
}

// Compute lays out the display graph and returns the render model plus a
// flag reporting whether the grid fallback was used. It recovers from any
// panic in the layout machinery - a render model is always produced and no
// error ever propagates to the caller.
func (e *Engine) Compute(g *transform.Graph) (model render.Model, fallback bool) {
	defer func() {
		if r := recover(); r != nil {
			model = e.gridFallback(g)
			fallback = true
		}
	}()

	if len(g.Nodes) == 0 {
		return render.Model{}, false
	}

	positions := e.position(g)

	model = e.assemble(g, positions, true)
	return model, false
}

// assemble builds the final model from center-based positions, translating
// to top-left using each node's size. With nested true, ParentID reflects
// the containment forest; the grid fallback flattens it.
func (e *Engine) assemble(g *transform.Graph, centers map[string]placed, nested bool) render.Model {
	var m render.Model
	for _, n := range g.Nodes {
		kind := kindOf(n, g.Groups)
		p, ok := centers[n.ID]
		if !ok {
			// A node the positioning pass somehow skipped still renders,
			// pinned at the origin.
			p = placed{size: kindSizes[kind]}
		}
		rn := render.Node{
			ID:   n.ID,
			Kind: kind,
			Position: render.Point{
				X: p.cx - p.size.W/2,
				Y: p.cy - p.size.H/2,
			},
			Size:           p.size,
			Type:           n.Type,
			Label:          n.Label,
			RiskLevel:      n.RiskLevel,
			RiskReasons:    n.RiskReasons,
			Location:       n.Location,
			MergedCount:    n.MergedCount(),
			MergedNodes:    n.Merged,
			MissingControl: n.Control,
		}
		if nested {
			rn.ParentID = g.Parent[n.ID]
		}
		m.Nodes = append(m.Nodes, rn)
	}
	for _, edge := range g.Edges {
		m.Edges = append(m.Edges, render.Edge{
			Source: edge.From,
			Target: edge.To,
			Style:  render.StyleFor(edge.Type),
		})
	}
	return m
}

// placed is a node's center coordinate and resolved size.
type placed struct {
	cx, cy float64
	size   render.Size
}
