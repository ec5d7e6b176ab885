package export

import (
	"bytes"
	"fmt"
	"html"

	"github.com/inkog-io/dashboard-sub000/pkg/layout"
	"github.com/inkog-io/dashboard-sub000/pkg/render"
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
	"github.com/inkog-io/dashboard-sub000/pkg/topology/ingest"
	"github.com/inkog-io/dashboard-sub000/pkg/topology/transform"
)

const svgMargin = 24.0

// Vector serializes the topology into a standalone SVG document. The
// exporter lays out the original, unmerged topology so the snapshot is a
// faithful record rather than the condensed dashboard view.
func Vector(t *topology.Topology) []byte {
	g, _ := ingest.Sanitize(t)
	model, _ := layout.New(layout.Config{}).Compute(transform.FromIngest(g))
	return RenderSVG(model)
}

// RenderSVG serializes an already positioned render model into SVG.
func RenderSVG(m render.Model) []byte {
	w, h := modelBounds(m)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	renderDefs(&buf)

	// Groups first so ordinary nodes and edges draw on top of them.
	for _, n := range m.Nodes {
		if n.Kind == render.KindGroup {
			renderGroup(&buf, n)
		}
	}
	for _, e := range m.Edges {
		renderEdge(&buf, m, e)
	}
	for _, n := range m.Nodes {
		if n.Kind != render.KindGroup {
			renderNode(&buf, n)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func modelBounds(m render.Model) (w, h float64) {
	for _, n := range m.Nodes {
		if right := n.Position.X + n.Size.W; right > w {
			w = right
		}
		if bottom := n.Position.Y + n.Size.H; bottom > h {
			h = bottom
		}
	}
	return w + 2*svgMargin, h + 2*svgMargin
}

func renderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <defs>
    <marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">
      <path d="M 0 0 L 10 5 L 0 10 z" fill="#94a3b8"/>
    </marker>
  </defs>
`)
}

func renderGroup(buf *bytes.Buffer, n render.Node) {
	x, y := n.Position.X+svgMargin, n.Position.Y+svgMargin
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="10" fill="#f8fafc" stroke="%s" stroke-width="1.5"/>`+"\n",
		x, y, n.Size.W, n.Size.H, n.RiskLevel.Color())
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="13" font-weight="bold" fill="#334155">%s</text>`+"\n",
		x+12, y+20, html.EscapeString(n.Label))
}

func renderNode(buf *bytes.Buffer, n render.Node) {
	x, y := n.Position.X+svgMargin, n.Position.Y+svgMargin
	dash := ""
	if n.Kind == render.KindGhost {
		dash = ` stroke-dasharray="6,4"`
	}
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="white" stroke="%s" stroke-width="2"%s/>`+"\n",
		x, y, n.Size.W, n.Size.H, n.RiskLevel.Color(), dash)
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="12" text-anchor="middle" fill="#0f172a">%s</text>`+"\n",
		x+n.Size.W/2, y+n.Size.H/2+4, html.EscapeString(n.Label))
}

func renderEdge(buf *bytes.Buffer, m render.Model, e render.Edge) {
	src, okS := m.Node(e.Source)
	dst, okD := m.Node(e.Target)
	if !okS || !okD {
		return
	}
	x1 := src.Position.X + src.Size.W/2 + svgMargin
	y1 := src.Position.Y + src.Size.H + svgMargin
	x2 := dst.Position.X + dst.Size.W/2 + svgMargin
	y2 := dst.Position.Y + svgMargin
	dash := ""
	if e.Style.Dashed {
		dash = ` stroke-dasharray="6,4"`
	}
	fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5"%s marker-end="url(#arrow)"/>`+"\n",
		x1, y1, x2, y2, e.Style.Color, dash)
}
