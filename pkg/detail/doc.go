// Package detail resolves a selected render node to the content of the
// dashboard's detail panel: related findings, merged member lists for
// supernodes, and remediation guidance for ghost nodes.
package detail
