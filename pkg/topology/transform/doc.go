// Package transform derives the display graph from a sanitized topology.
//
// Two transformations run between ingestion and layout:
//
//   - Merge collapses groups of structurally-identical leaf nodes (same
//     mergeable type, same outgoing-target set) into a single supernode,
//     redirecting and deduplicating their edges.
//   - InjectGhosts prepends one synthetic placeholder node per governance
//     control the scanner reported missing.
//
// Both are pure functions of their input graph. Synthetic nodes exist only
// in the display graph; exports always work from the raw topology.
package transform
