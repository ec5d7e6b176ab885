// Package ingest sanitizes raw scanner topologies into a consistent graph.
//
// The detection service performs best-effort static analysis, so its output
// routinely contains dangling edge endpoints, duplicate or cyclic containment
// links, and header counts that disagree with the payload. Sanitize repairs
// all of that with a filter pass and reports what it dropped; it never
// returns an error and never panics.
package ingest
