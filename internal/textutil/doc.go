// Package textutil provides small string helpers shared by the planner and
// the performer store: filesystem-safe names, whitespace collapsing, ordered
// de-duplication, and Unicode width folding for release names.
package textutil
