package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in several representations.
type ColorResult struct {
	Hex string   `json:"hex"` // Hex format "#RRGGBB" (no alpha)
	RGB RGBColor `json:"rgb"` // RGB components
	HSL HSLColor `json:"hsl"` // HSL representation
}

// Color returns the sampled color as an opaque color.RGBA.
func (c ColorResult) Color() color.RGBA {
	return color.RGBA{R: c.RGB.R, G: c.RGB.G, B: c.RGB.B, A: 255}
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Parameters:
//   - img: The source image to sample from.
//   - x: X coordinate (0-based, 0 = leftmost pixel).
//   - y: Y coordinate (0-based, 0 = topmost pixel).
//
// Returns:
//   - *ColorResult: The color at (x, y) in multiple formats.
//   - error: Non-nil if coordinates are outside the image bounds.
//
// For 16-bit images, values are scaled down by right-shifting 8 bits.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	r, g, b, _ := img.At(x, y).RGBA()
	return newColorResult(uint8(r>>8), uint8(g>>8), uint8(b>>8)), nil
}

func newColorResult(r, g, b uint8) *ColorResult {
	h, s, l := colorful.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
	}.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return &ColorResult{
		Hex: fmt.Sprintf("#%02X%02X%02X", r, g, b),
		RGB: RGBColor{R: r, G: g, B: b},
		HSL: HSLColor{H: int(math.Round(h)) % 360, S: int(math.Round(s * 100)), L: int(math.Round(l * 100))},
	}
}

// LabeledPoint is a pixel coordinate with a label identifying what was sampled,
// such as an item index.
type LabeledPoint struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label,omitempty"`
}

// LabeledColorResult combines a color sample with its location and label.
type LabeledColorResult struct {
	Label string      `json:"label,omitempty"`
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Color ColorResult `json:"color"`
}

// SampleColors samples every point, in order.
//
// Returns an error, and no partial results, if any point is outside the image.
func SampleColors(img image.Image, points []LabeledPoint) ([]LabeledColorResult, error) {
	results := make([]LabeledColorResult, 0, len(points))
	for _, p := range points {
		c, err := SampleColor(img, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		results = append(results, LabeledColorResult{Label: p.Label, X: p.X, Y: p.Y, Color: *c})
	}
	return results, nil
}

// ColorFrequency represents a color and its occurrence frequency in a region.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#RRGGBB" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of counted pixels (0-100)
	RGB        RGBColor `json:"rgb"`        // RGB components (quantized)
}

// DominantColors returns up to count of the most common colors in region,
// most frequent first.
//
// Parameters:
//   - img: The source image to analyze.
//   - count: Maximum number of colors to return.
//   - region: Area to analyze, clipped to the image. An empty rectangle means the
//     whole image.
//   - ignore: Color to leave out of the tally, typically the background. May be nil.
//
// Components are quantized to multiples of 16 so that anti-aliased edges fold
// into their parent color. Percentages are relative to the pixels counted, so
// ignored pixels do not dilute them.
func DominantColors(img image.Image, count int, region image.Rectangle, ignore color.Color) []ColorFrequency {
	bounds := img.Bounds()
	if !region.Empty() {
		bounds = region.Intersect(bounds)
	}

	ignoreKey := ""
	if ignore != nil {
		ignoreKey = quantizedHex(ignore)
	}

	counts := make(map[string]int)
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			key := quantizedHex(img.At(x, y))
			if key == ignoreKey {
				continue
			}
			counts[key]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for hex, n := range counts {
		var r, g, b uint8
		_, _ = fmt.Sscanf(hex, "#%02X%02X%02X", &r, &g, &b)
		colors = append(colors, ColorFrequency{
			Hex:        hex,
			Percentage: float64(n) / float64(total) * 100,
			RGB:        RGBColor{R: r, G: g, B: b},
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})
	if len(colors) > count {
		colors = colors[:count]
	}
	return colors
}

func quantizedHex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02X%02X%02X", uint8((r>>8)/16*16), uint8((g>>8)/16*16), uint8((b>>8)/16*16))
}

// ColorDistance returns the CIE L*a*b* distance between two colors. Identical
// colors are 0 apart; black and white are about 1 apart.
func ColorDistance(a, b color.Color) float64 {
	ca, _ := colorful.MakeColor(opaque(a))
	cb, _ := colorful.MakeColor(opaque(b))
	return ca.DistanceLab(cb)
}

// NearestColor returns the name of the candidate closest to c and its distance.
// Ties go to the alphabetically first name.
func NearestColor(c color.Color, candidates map[string]color.Color) (string, float64) {
	names := make([]string, 0, len(candidates))
	for name := range candidates {
		names = append(names, name)
	}
	sort.Strings(names)

	best, bestDist := "", math.Inf(1)
	for _, name := range names {
		if d := ColorDistance(c, candidates[name]); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best, bestDist
}

// opaque drops alpha so that MakeColor never sees a fully transparent color.
func opaque(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}
}
