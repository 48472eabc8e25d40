//go:build cgo && linux

package ocr

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/otiai10/gosseract/v2"
)

// Available reports whether this build can run Tesseract.
func Available() bool {
	return true
}

// Version returns the linked Tesseract version.
func Version() string {
	return gosseract.Version()
}

func (r *Reader) read(img image.Image) (*GlyphResult, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode glyph: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_CHAR); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if r.whitelist != "" {
		if err := client.SetWhitelist(r.whitelist); err != nil {
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	result := &GlyphResult{Text: strings.TrimSpace(text)}

	// Symbol boxes carry the confidence; a failure here still leaves the text.
	if boxes, err := client.GetBoundingBoxes(gosseract.RIL_SYMBOL); err == nil && len(boxes) > 0 {
		result.Confidence = float64(boxes[0].Confidence) / 100.0
	}
	return result, nil
}
