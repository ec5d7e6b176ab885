package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/google/uuid"

	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

// Format identifies the encoding of an export artifact.
type Format string

const (
	FormatFlowchart Format = "flowchart"
	FormatSVG       Format = "svg"
	FormatPNG       Format = "png"
)

// Artifact is one export result. Format tells the caller what Data holds,
// which matters for the raster path: a failed rasterization degrades to an
// SVG artifact instead of an error.
type Artifact struct {
	ID     string
	Format Format
	Data   []byte
}

// FlowchartArtifact wraps the Mermaid serialization in an artifact.
func FlowchartArtifact(t *topology.Topology) Artifact {
	return Artifact{ID: uuid.NewString(), Format: FormatFlowchart, Data: []byte(Flowchart(t))}
}

// VectorArtifact wraps the SVG serialization in an artifact.
func VectorArtifact(t *topology.Topology) Artifact {
	return Artifact{ID: uuid.NewString(), Format: FormatSVG, Data: Vector(t)}
}

// rasterize renders DOT to PNG. Indirection so tests can force failure.
var rasterize = renderDOTPNG

// Raster renders the topology to PNG via Graphviz. Any failure, including
// a panic inside the rasterizer, falls back to the vector snapshot. No
// error is ever surfaced.
func Raster(ctx context.Context, t *topology.Topology) Artifact {
	png, err := func() (data []byte, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("rasterize: %v", r)
			}
		}()
		return rasterize(ctx, ToDOT(t))
	}()
	if err != nil {
		return VectorArtifact(t)
	}
	return Artifact{ID: uuid.NewString(), Format: FormatPNG, Data: png}
}

func renderDOTPNG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// ToDOT converts the topology to Graphviz DOT, with nodes filled by risk
// color and contains edges drawn as dashed cluster-style links.
func ToDOT(t *topology.Topology) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range t.Nodes {
		attrs := []string{
			fmt.Sprintf("label=%q", nodeLabel(n)),
			fmt.Sprintf("fillcolor=%q", n.RiskLevel.Color()),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range t.Edges {
		if e.Type == topology.EdgeContains {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, arrowhead=none, color=grey];\n", e.From, e.To)
			continue
		}
		if e.Label != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, e.Label)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}
