package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

// Flowchart serializes a topology into Mermaid flowchart notation: one
// declaration line per node with a shape keyed by its type, one line per
// non-contains edge, then one style directive per node colored by risk.
//
// The export works on the original topology, before merging and ghost
// injection, so audits see every node the scanner reported.
func Flowchart(t *topology.Topology) string {
	var buf bytes.Buffer
	buf.WriteString("graph TD\n")

	for _, n := range t.Nodes {
		fmt.Fprintf(&buf, "    %s%s\n", mermaidID(n.ID), mermaidShape(n))
	}

	buf.WriteString("\n")
	for _, e := range t.Edges {
		if e.Type == topology.EdgeContains {
			continue
		}
		if e.Label != "" {
			fmt.Fprintf(&buf, "    %s -->|%s| %s\n",
				mermaidID(e.From), mermaidText(e.Label), mermaidID(e.To))
		} else {
			fmt.Fprintf(&buf, "    %s --> %s\n", mermaidID(e.From), mermaidID(e.To))
		}
	}

	buf.WriteString("\n")
	for _, n := range t.Nodes {
		fmt.Fprintf(&buf, "    style %s fill:%s,color:#fff\n",
			mermaidID(n.ID), n.RiskLevel.Color())
	}

	return buf.String()
}

// mermaidShape returns the node's label wrapped in the bracket form for its
// type: double brackets for LLM calls, double parentheses for loops, and a
// plain rectangle otherwise.
func mermaidShape(n topology.Node) string {
	label := mermaidText(nodeLabel(n))
	switch n.Type {
	case topology.NodeTypeLLMCall:
		return "[[" + label + "]]"
	case topology.NodeTypeLoop:
		return "((" + label + "))"
	default:
		return "[" + label + "]"
	}
}

func nodeLabel(n topology.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// mermaidID strips characters Mermaid treats as syntax from a node ID.
func mermaidID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// mermaidText escapes label text for use inside bracket shapes and edge
// labels.
func mermaidText(s string) string {
	r := strings.NewReplacer(
		"[", "(", "]", ")",
		"{", "(", "}", ")",
		"|", "/",
		"\n", " ",
		`"`, "'",
	)
	return r.Replace(s)
}
