// Package detection finds the corner fiducials of a drawing surface and
// assigns them to corner roles.
//
// # Markers
//
// A marker is a square binary code: a black border one cell wide around a
// grid of black and white cells. The code grid is read row by row with white
// as 1 and matched against a Dictionary in all four orientations, so a marker
// is recognized however the camera is turned. Corners are reported in the
// marker's own orientation (top-left, top-right, bottom-right, bottom-left).
//
// Dictionaries are loaded from OpenCV's YAML dump format:
//
//	%YAML:1.0
//	---
//	nmarkers: 50
//	markersize: 5
//	maxCorrectionBits: 2
//	marker_0: "0101001011100110101101000"
//	...
//
// # Localization
//
// Localize maps decoded markers to the four corner roles by identifier, never
// by position in the frame. Each role's point is the centroid of its marker's
// corners. When an identifier appears more than once, the marker with the
// larger area wins, then the topmost, then the leftmost, so the result does
// not depend on detection order. A missing role is reported as a
// *MissingMarkersError listing every missing role and the identifiers that
// were found instead.
//
// # Coordinate System
//
// All coordinates are in source-frame pixels:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Limitations
//
// The built-in ArucoDetector uses adaptive mean thresholding and convex hull
// quad fitting. It expects markers with a visible white quiet zone and rejects
// candidates that touch the frame edge. Other detectors can be plugged in
// through the Detector interface.
package detection
