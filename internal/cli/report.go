package cli

import (
	"github.com/inkog-io/dashboard-sub000/pkg/topology/ingest"
)

// reportDegradations prints warnings for anything the pipeline silently
// repaired. The pipeline never fails on malformed input, so this is the
// operator's only window into what was discarded.
func reportDegradations(r ingest.Report) {
	if r.DroppedEdges > 0 {
		printWarning("dropped %d edges referencing missing nodes", r.DroppedEdges)
	}
	if r.DroppedParents > 0 {
		printWarning("dropped %d parent references to missing groups", r.DroppedParents)
	}
	if r.BrokenCycles > 0 {
		printWarning("broke %d containment cycles", r.BrokenCycles)
	}
	if r.CountMismatch {
		printWarning("declared node/edge counts disagree with the payload")
	}
	if r.LayoutFallback {
		printWarning("hierarchical layout failed, used grid fallback")
	}
}
