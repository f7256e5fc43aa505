// Package workspace describes the physical drawing surface and the constants
// the extraction pipeline runs with.
//
// A Spec names the rectified raster size, which fiducial marker identifier is
// printed in each corner, and the physical size in millimeters that the
// rectified raster covers. Tuning carries the blur, edge, morphology and noise
// constants. Both are plain values passed into each stage explicitly; no
// stage reads process-wide state, so independent frames can be processed
// concurrently by independent pipelines.
//
// Configuration is read from a YAML file (see Load) layered over Default.
package workspace
