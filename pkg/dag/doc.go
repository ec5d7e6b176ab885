// Package dag provides the layered-graph core used by the hierarchical
// layout engine: rank-indexed adjacency, rank assignment bookkeeping, and
// Fenwick-tree edge-crossing counts for ordering heuristics.
//
// The package is deliberately small and layout-oriented. It knows nothing
// about topologies, risk, or rendering - the layout engine translates the
// display graph into this form, runs the transform passes, and reads
// positions back out.
package dag
