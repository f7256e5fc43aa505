// Package geometry computes the perspective correction that turns a photo of
// the drawing surface into a fronto-parallel frame.
//
// NewHomography solves the exact transform for four point correspondences and
// rejects configurations that cannot define one. Rectify uses it to resample
// a photo into a fixed-size frame whose corners are the marker centroids.
package geometry
