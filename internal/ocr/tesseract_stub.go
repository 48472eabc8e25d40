//go:build !cgo || !linux

package ocr

import "image"

// Available reports whether this build can run Tesseract.
func Available() bool {
	return false
}

// Version returns the linked Tesseract version.
func Version() string {
	return ""
}

func (r *Reader) read(image.Image) (*GlyphResult, error) {
	return nil, ErrUnavailable
}
