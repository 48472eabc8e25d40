// Package ocr reads the glyph drawn in a single item bounding box using
// Tesseract (via gosseract/v2).
//
// It backs the audit of glyph stimuli: the number flavor draws "2" and "5",
// and the audit checks that Tesseract agrees with the metadata about which
// digit sits in each box.
//
// # Prerequisites
//
// Tesseract and its English training data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng libtesseract-dev
//   - macOS: brew install tesseract
//
// Builds without cgo (or outside Linux) compile a stub whose Available
// reports false and whose reads fail with ErrUnavailable, so the rest of the
// program keeps working and the audit reports glyph checks as skipped.
//
// # Preprocessing
//
// Stimulus glyphs are small and usually light on a dark background.
// Tesseract does best on large dark text on white, so every crop is
// converted to grayscale, inverted when its border is dark, upscaled and
// padded before recognition.
package ocr
