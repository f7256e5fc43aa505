// Package trace groups skeleton pixels into strokes.
//
// Components labels 8-connected regions with an iterative depth-first flood
// fill, so arbitrarily long lines never grow the goroutine stack. Trace drops
// the tiny components left behind by paper texture and sensor noise.
//
// A stroke's pixel order is the order the flood fill reached them. That order
// is deterministic but not a continuous path through a branching skeleton;
// OrderPath rewalks a stroke when a plotter-friendly sequence is wanted.
package trace
