package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropResult contains the cropped image data
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropRegion cuts r out of img and optionally rescales it
func CropRegion(img image.Image, r image.Rectangle, scale float64) (*image.NRGBA, error) {
	bounds := img.Bounds()

	if r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, bounds)
	}

	cropped := imaging.Crop(img, r)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}
	return cropped, nil
}

// Crop is CropRegion with the result encoded as base64 PNG
func Crop(img image.Image, r image.Rectangle, scale float64) (*CropResult, error) {
	cropped, err := CropRegion(img, r, scale)
	if err != nil {
		return nil, err
	}

	enc, err := EncodeBase64PNG(cropped)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: enc,
		MimeType:    "image/png",
	}, nil
}

// Pad grows r by n pixels on every side and clips it to bounds
func Pad(r image.Rectangle, n int, bounds image.Rectangle) image.Rectangle {
	return r.Inset(-n).Intersect(bounds)
}
