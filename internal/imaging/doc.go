// Package imaging provides the raster stages of stroke extraction: decoding
// input frames, turning a rectified frame into a line mask, and rendering
// diagnostic images.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Line Mask Extraction
//
// ExtractLineMask runs a fixed sequence of stages over a rectified frame:
//
//	Intensity -> GaussianBlur -> Canny -> Close -> Thin
//
// Each stage is exported so callers can inspect intermediate results; the
// constants come from workspace.Tuning. The output Mask holds a one pixel wide,
// 8-connected skeleton of the drawn lines.
//
// A pen line is darker than the paper on both sides, so Canny reports two
// parallel edges along it. Closing fuses them into a solid band and thinning
// collapses the band onto its center line, giving one skeleton stroke per
// drawn line.
//
// # Decoding
//
// Decode and DecodeFile accept PNG, JPEG, GIF, BMP, TIFF and WebP, apply EXIF
// orientation, and report failures as *DecodeError. ImageCache keeps decoded
// frames keyed by path for the MCP server.
//
// # Diagnostics
//
// EdgeDetect, RenderStrokes and GridOverlay return base64 PNG payloads for
// clients that want to see what a stage produced.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Every other function is
// stateless and may run concurrently on different frames.
package imaging
