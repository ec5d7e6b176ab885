// Package transform provides graph transformations that prepare a DAG for
// layered layout: cycle breaking and rank assignment.
package transform
