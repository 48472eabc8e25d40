package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"testing"
)

func TestCropRegion(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	img := createBarImage(60, 60, image.Rect(20, 10, 30, 40), red, color.Black)

	got, err := CropRegion(img, image.Rect(15, 10, 45, 40), 1.0)
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	if got.Bounds().Dx() != 30 || got.Bounds().Dy() != 30 {
		t.Fatalf("dimensions: got %v, want 30x30", got.Bounds())
	}

	// the bar now starts 5 pixels in
	if c := got.NRGBAAt(got.Bounds().Min.X+7, got.Bounds().Min.Y+15); c.R != 255 || c.G != 0 {
		t.Errorf("bar pixel: got %v, want red", c)
	}
	if c := got.NRGBAAt(got.Bounds().Min.X+1, got.Bounds().Min.Y+15); c.R != 0 {
		t.Errorf("background pixel: got %v, want black", c)
	}
}

func TestCropRegion_Scale(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name  string
		r     image.Rectangle
		scale float64
		wantW int
		wantH int
	}{
		{"identity", image.Rect(0, 0, 30, 30), 1.0, 30, 30},
		{"up", image.Rect(0, 0, 30, 30), 3.0, 90, 90},
		{"down", image.Rect(0, 0, 100, 50), 0.5, 50, 25},
		{"zero scale ignored", image.Rect(10, 10, 20, 20), 0, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CropRegion(img, tt.r, tt.scale)
			if err != nil {
				t.Fatalf("CropRegion failed: %v", err)
			}
			if got.Bounds().Dx() != tt.wantW || got.Bounds().Dy() != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", got.Bounds().Dx(), got.Bounds().Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCropRegion_Invalid(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)

	tests := []struct {
		name string
		r    image.Rectangle
	}{
		{"outside", image.Rect(90, 90, 110, 110)},
		{"negative", image.Rect(-5, 0, 10, 10)},
		{"empty", image.Rect(10, 10, 10, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CropRegion(img, tt.r, 1.0); err == nil {
				t.Errorf("expected error for %v", tt.r)
			}
		})
	}
}

func TestCrop(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)

	result, err := Crop(img, image.Rect(0, 0, 50, 40), 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if result.Width != 50 || result.Height != 40 {
		t.Errorf("dimensions: got %dx%d, want 50x40", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
	if _, err := base64.StdEncoding.DecodeString(result.ImageBase64); err != nil {
		t.Errorf("failed to decode base64: %v", err)
	}
}

func TestPad(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	if got, want := Pad(image.Rect(10, 10, 20, 20), 3, bounds), image.Rect(7, 7, 23, 23); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := Pad(image.Rect(0, 95, 10, 100), 5, bounds), image.Rect(0, 90, 15, 100); got != want {
		t.Errorf("clipped: got %v, want %v", got, want)
	}
}
