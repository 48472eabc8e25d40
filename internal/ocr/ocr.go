package ocr

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ErrUnavailable is returned by builds without Tesseract support.
var ErrUnavailable = errors.New("OCR is not available in this build")

// DefaultLanguage is the Tesseract language used for glyphs.
const DefaultLanguage = "eng"

// glyphHeight is the height crops are scaled to before recognition.
const glyphHeight = 96

// GlyphResult is what Tesseract read in one box.
type GlyphResult struct {
	// Text is the recognized character, or "" when nothing was recognized.
	Text string `json:"text"`

	// Confidence is Tesseract's confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`
}

// Reader recognizes single glyphs restricted to an allowed character set.
type Reader struct {
	language  string
	whitelist string
}

// NewReader returns a reader that only reports characters from whitelist.
// An empty whitelist allows any character.
func NewReader(whitelist string) *Reader {
	return &Reader{language: DefaultLanguage, whitelist: whitelist}
}

// Whitelist returns the allowed characters.
func (r *Reader) Whitelist() string {
	return r.whitelist
}

// ReadGlyph recognizes the single glyph inside box.
func (r *Reader) ReadGlyph(img image.Image, box image.Rectangle) (*GlyphResult, error) {
	box = box.Intersect(img.Bounds())
	if box.Empty() {
		return nil, fmt.Errorf("glyph box %v is outside the image %v", box, img.Bounds())
	}
	return r.read(Preprocess(img, box))
}

// Preprocess crops box out of img and turns it into a dark-on-white,
// upscaled and padded grayscale image.
func Preprocess(img image.Image, box image.Rectangle) *image.NRGBA {
	crop := imaging.Grayscale(imaging.Crop(img, box))
	if darkBorder(crop) {
		crop = imaging.Invert(crop)
	}
	crop = imaging.Resize(crop, 0, glyphHeight, imaging.Lanczos)

	pad := glyphHeight / 4
	b := crop.Bounds()
	out := imaging.New(b.Dx()+2*pad, b.Dy()+2*pad, color.White)
	return imaging.Paste(out, crop, image.Pt(pad, pad))
}

// darkBorder reports whether the outermost pixels of img are mostly dark,
// which means the glyph is light on dark.
func darkBorder(img *image.NRGBA) bool {
	b := img.Bounds()
	var sum, n int
	add := func(x, y int) {
		sum += int(img.NRGBAAt(x, y).R)
		n++
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		add(x, b.Min.Y)
		add(x, b.Max.Y-1)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		add(b.Min.X, y)
		add(b.Max.X-1, y)
	}
	return n > 0 && sum/n < 128
}
