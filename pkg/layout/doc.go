// Package layout positions display graphs for rendering.
//
// The engine runs a layered (Sugiyama-style) algorithm: cycle breaking,
// longest-path rank assignment, barycenter ordering with adjacent-swap
// refinement, and center-based coordinate assignment. Compound nodes are
// supported by laying out each containment scope bottom-up: a group's
// children are positioned first, the group is sized around them, and the
// group then participates in its own parent scope as a single box.
//
// Layout never fails. Any panic in the machinery degrades to a
// deterministic grid arrangement so a render model is always produced.
package layout
