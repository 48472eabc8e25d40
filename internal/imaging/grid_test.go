package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

var testGrid = CellGrid{Rows: 2, Cols: 3, CellW: 30, CellH: 40, OriginX: 5, OriginY: 10}

func TestDrawCellGrid(t *testing.T) {
	img := createInMemoryImage(100, 100, color.Black)
	red := color.RGBA{255, 0, 0, 255}

	got := DrawCellGrid(img, testGrid, false, red)

	for _, x := range []int{5, 35, 65, 95} {
		if c := got.RGBAAt(x, 50); c != red {
			t.Errorf("vertical line at x=%d: got %v", x, c)
		}
	}
	for _, y := range []int{10, 50, 90} {
		if c := got.RGBAAt(20, y); c != red {
			t.Errorf("horizontal line at y=%d: got %v", y, c)
		}
	}
	if c := got.RGBAAt(20, 30); c != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("cell interior: got %v, want black", c)
	}

	// source untouched
	if c := img.RGBAAt(5, 50); c != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("DrawCellGrid modified its input: %v", c)
	}
}

func TestDrawCellGrid_Indices(t *testing.T) {
	img := createInMemoryImage(100, 100, color.Black)

	got := DrawCellGrid(img, testGrid, true, color.RGBA{255, 0, 0, 255})

	// label of cell 4 (row 1, col 1) starts at (37, 52)
	white := 0
	for y := 52; y < 57; y++ {
		for x := 37; x < 40; x++ {
			if got.RGBAAt(x, y).R > 200 && got.RGBAAt(x, y).G > 200 {
				white++
			}
		}
	}
	if white == 0 {
		t.Error("cell 4 should carry a label")
	}
}

func TestCellOverlay(t *testing.T) {
	img := createInMemoryImage(100, 100, color.Black)

	result, err := CellOverlay(img, testGrid, false, "#00FF00FF")
	if err != nil {
		t.Fatalf("CellOverlay failed: %v", err)
	}
	if result.Width != 100 || result.Height != 100 || result.Rows != 2 || result.Cols != 3 {
		t.Errorf("got %+v", result)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	overlay, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	if _, g, _, _ := overlay.At(35, 50).RGBA(); g>>8 != 255 {
		t.Errorf("grid line should be green, got g=%d", g>>8)
	}
}

func TestCellOverlay_InvalidColor(t *testing.T) {
	img := createInMemoryImage(50, 50, color.Black)

	if _, err := CellOverlay(img, testGrid, false, "not-a-color"); err != nil {
		t.Errorf("invalid color should fall back to the default, got %v", err)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex     string
		wantR   uint8
		wantG   uint8
		wantB   uint8
		wantA   uint8
		wantErr bool
	}{
		{"#FF0000", 255, 0, 0, 255, false},
		{"#00FF00", 0, 255, 0, 255, false},
		{"FF0000", 255, 0, 0, 255, false},
		{"#FF000080", 255, 0, 0, 128, false},
		{"", 0, 0, 0, 0, true},
		{"#FFF", 0, 0, 0, 0, true},
		{"#GGGGGG", 0, 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			c, err := parseHexColor(tt.hex)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.R != tt.wantR || c.G != tt.wantG || c.B != tt.wantB || c.A != tt.wantA {
				t.Errorf("got (%d,%d,%d,%d), want (%d,%d,%d,%d)",
					c.R, c.G, c.B, c.A, tt.wantR, tt.wantG, tt.wantB, tt.wantA)
			}
		})
	}
}

func TestDrawLabel_BoundsCheck(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 180}

	// must not panic when the label runs off the image
	drawLabel(img, 15, 15, "100", fg, bg)
	drawLabel(img, -5, -5, "24", fg, bg)
	drawLabel(img, 10, 10, "", fg, bg)
}
