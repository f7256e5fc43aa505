// Package ocr reads the captions printed under the corner markers of a
// drawing sheet, using the Tesseract OCR engine through gosseract/v2.
//
// The printed sheet labels every marker with its id and corner, for example
// "ID 2 (bottom_left)". Reading those captions back catches a sheet printed
// for a different workspace, or a marker taped into the wrong corner, before
// the frame is rectified into a mirrored or rotated view. The check is a
// diagnostic: it never blocks extraction.
//
// # Prerequisites
//
// Tesseract and its English training data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Engine.TessdataPrefix points at a non-standard training data directory.
//
// # Functions
//
//   - Engine.ReadRegion: OCR on a rectangle of an in-memory frame
//   - ReadMarkerLabels: read the caption strip under each detected marker
//   - CheckLabels: compare captions and marker positions with the workspace
//
// Captions are small, so photos should be taken close enough for the text to
// be at least 10 pixels tall.
package ocr
