package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
)

// CellGrid is the pixel layout of a placement grid
type CellGrid struct {
	Rows    int
	Cols    int
	CellW   int
	CellH   int
	OriginX int
	OriginY int
}

// OverlayResult contains the image with grid overlay
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
}

// DrawCellGrid copies img and draws the cell boundaries of g over it, optionally
// numbering each cell in row-major order
func DrawCellGrid(img image.Image, g CellGrid, showIndices bool, lineColor color.RGBA) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	// Vertical lines
	for c := 0; c <= g.Cols; c++ {
		x := g.OriginX + c*g.CellW
		if x < bounds.Min.X || x >= bounds.Max.X {
			continue
		}
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			result.Set(x, y, lineColor)
		}
	}

	// Horizontal lines
	for r := 0; r <= g.Rows; r++ {
		y := g.OriginY + r*g.CellH
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			result.Set(x, y, lineColor)
		}
	}

	if showIndices {
		labelColor := color.RGBA{255, 255, 255, 255}
		bgColor := color.RGBA{0, 0, 0, 180}
		for i := 0; i < g.Rows*g.Cols; i++ {
			x := g.OriginX + (i%g.Cols)*g.CellW
			y := g.OriginY + (i/g.Cols)*g.CellH
			drawLabel(result, x+2, y+2, strconv.Itoa(i), labelColor, bgColor)
		}
	}

	return result
}

// CellOverlay draws the grid over img and returns it as base64 PNG
func CellOverlay(img image.Image, g CellGrid, showIndices bool, lineColorHex string) (*OverlayResult, error) {
	lineColor, err := parseHexColor(lineColorHex)
	if err != nil {
		lineColor = color.RGBA{255, 0, 0, 128} // Default: semi-transparent red
	}

	result := DrawCellGrid(img, g, showIndices, lineColor)

	enc, err := EncodeBase64PNG(result)
	if err != nil {
		return nil, err
	}

	return &OverlayResult{
		Width:       result.Bounds().Dx(),
		Height:      result.Bounds().Dy(),
		ImageBase64: enc,
		MimeType:    "image/png",
		Rows:        g.Rows,
		Cols:        g.Cols,
	}, nil
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLabel draws a cell number with a tiny 3x5 pixel digit font
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if image.Pt(px, py).In(bounds) {
				img.Set(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if image.Pt(px, py).In(bounds) {
						img.Set(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
