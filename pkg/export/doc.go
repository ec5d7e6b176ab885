// Package export serializes topologies into shareable formats: Mermaid
// flowchart text, a standalone SVG snapshot, and a PNG raster.
//
// Exports always operate on the original topology, before node merging and
// ghost injection, so every node the scanner reported appears in the
// output. The raster path degrades to the vector snapshot on any failure
// rather than returning an error.
package export
