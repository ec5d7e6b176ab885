// Package render defines the render model consumed by the canvas layer: a
// flat list of positioned nodes (leafs, supernodes, ghosts, and compound
// groups) and styled edges, plus the click payloads the detail panel
// receives on selection.
package render
