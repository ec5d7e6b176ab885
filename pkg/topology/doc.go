// Package topology defines the data model for detected agent execution
// graphs: nodes, edges, governance status, and scan findings.
//
// The types mirror the wire contract of the detection service. All enum
// vocabularies are closed - unknown node types, edge types, and risk levels
// decode to an explicit default arm instead of producing errors, because the
// upstream analyzer is best-effort and its vocabulary grows over time.
//
// The raw topology is treated as append-only input per scan. Downstream
// packages (ingest, transform, layout) derive new structures from it and
// never mutate it.
package topology
