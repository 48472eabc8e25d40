package detection

import (
	"fmt"
	"image"
	"image/color"
	"sort"
)

// Orientation of a blob's bounding box.
const (
	OrientationVertical   = "vertical"
	OrientationHorizontal = "horizontal"
	OrientationSquare     = "square"
)

// Point is a pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Blob is a connected region of foreground pixels.
type Blob struct {
	// Bounds encloses every pixel of the blob.
	Bounds image.Rectangle `json:"-"`

	// Center is the center of Bounds.
	Center Point `json:"center"`

	Width  int `json:"width"`
	Height int `json:"height"`

	// Area is the number of pixels in the blob, not the area of Bounds.
	Area int `json:"area"`

	// FillColor is the hex color at Center. It may be a background pixel for
	// hollow shapes such as "o".
	FillColor string `json:"fill_color"`

	// Orientation compares Width and Height. A side at least 1.5 times the
	// other decides it; anything closer is square.
	Orientation string `json:"orientation"`
}

// BlobsResult contains every blob found in an image.
type BlobsResult struct {
	// Blobs is sorted top to bottom, then left to right.
	Blobs []Blob `json:"blobs"`
	Count int    `json:"count"`
}

// Options tune FindBlobs.
type Options struct {
	// Background is the color every non-item pixel has.
	Background color.Color

	// Tolerance is the largest per-channel difference (0-255) still counted
	// as background. Antialiased glyph edges need a few levels.
	Tolerance int

	// MinArea drops blobs with fewer pixels.
	MinArea int
}

// FindBlobs groups the foreground pixels of img into 8-connected blobs.
//
// Parameters:
//   - img: the stimulus surface.
//   - opts: background color, tolerance and minimum blob size.
//
// Returns an error only if the options are invalid.
func FindBlobs(img image.Image, opts Options) (*BlobsResult, error) {
	if opts.Background == nil {
		return nil, fmt.Errorf("background color is required")
	}
	if opts.Tolerance < 0 || opts.Tolerance > 255 {
		return nil, fmt.Errorf("tolerance must be between 0 and 255, got %d", opts.Tolerance)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	mask := foregroundMask(img, opts.Background, opts.Tolerance)

	visited := make([][]bool, height)
	for y := range visited {
		visited[y] = make([]bool, width)
	}

	blobs := make([]Blob, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !mask[y][x] || visited[y][x] {
				continue
			}
			pixels := floodFill(mask, visited, x, y, width, height)
			if len(pixels) < opts.MinArea {
				continue
			}
			blobs = append(blobs, newBlob(img, pixels, bounds.Min))
		}
	}

	sortBlobs(blobs)
	return &BlobsResult{Blobs: blobs, Count: len(blobs)}, nil
}

// MergeWithin joins blobs whose centers fall inside the same box. Each box
// yields at most one blob; blobs outside every box are returned unchanged
// after the merged ones.
func MergeWithin(img image.Image, blobs []Blob, boxes []image.Rectangle) []Blob {
	merged := make([]Blob, 0, len(boxes))
	used := make([]bool, len(blobs))
	for _, box := range boxes {
		var acc *Blob
		for i, b := range blobs {
			if used[i] || !image.Pt(b.Center.X, b.Center.Y).In(box) {
				continue
			}
			used[i] = true
			if acc == nil {
				bb := b
				acc = &bb
				continue
			}
			acc.Bounds = acc.Bounds.Union(b.Bounds)
			acc.Area += b.Area
		}
		if acc != nil {
			finish(img, acc)
			merged = append(merged, *acc)
		}
	}
	for i, b := range blobs {
		if !used[i] {
			merged = append(merged, b)
		}
	}
	return merged
}

func foregroundMask(img image.Image, bg color.Color, tolerance int) [][]bool {
	bounds := img.Bounds()
	br, bgc, bb, _ := bg.RGBA()
	mask := make([][]bool, bounds.Dy())
	for y := range mask {
		mask[y] = make([]bool, bounds.Dx())
		for x := range mask[y] {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			if absDiff(r, br) > tolerance || absDiff(g, bgc) > tolerance || absDiff(b, bb) > tolerance {
				mask[y][x] = true
			}
		}
	}
	return mask
}

func absDiff(a, b uint32) int {
	d := int(a>>8) - int(b>>8)
	if d < 0 {
		return -d
	}
	return d
}

// floodFill collects the 8-connected mask pixels reachable from (startX, startY).
// It uses an explicit stack so large blobs cannot overflow the goroutine stack.
func floodFill(mask, visited [][]bool, startX, startY, width, height int) []Point {
	var pixels []Point
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !mask[p.Y][p.X] {
			continue
		}
		visited[p.Y][p.X] = true
		pixels = append(pixels, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
	return pixels
}

func newBlob(img image.Image, pixels []Point, origin image.Point) Blob {
	minX, minY := pixels[0].X, pixels[0].Y
	maxX, maxY := minX, minY
	for _, p := range pixels[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	b := Blob{
		Bounds: image.Rect(minX, minY, maxX+1, maxY+1).Add(origin),
		Area:   len(pixels),
	}
	finish(img, &b)
	return b
}

// finish derives everything else from Bounds.
func finish(img image.Image, b *Blob) {
	b.Width = b.Bounds.Dx()
	b.Height = b.Bounds.Dy()
	b.Center = Point{X: (b.Bounds.Min.X + b.Bounds.Max.X) / 2, Y: (b.Bounds.Min.Y + b.Bounds.Max.Y) / 2}
	b.FillColor = sampleColorHex(img, b.Center.X, b.Center.Y)
	b.Orientation = orientation(b.Width, b.Height)
}

func orientation(w, h int) string {
	switch {
	case 2*h >= 3*w:
		return OrientationVertical
	case 2*w >= 3*h:
		return OrientationHorizontal
	default:
		return OrientationSquare
	}
}

func sortBlobs(blobs []Blob) {
	sort.Slice(blobs, func(i, j int) bool {
		if blobs[i].Bounds.Min.Y != blobs[j].Bounds.Min.Y {
			return blobs[i].Bounds.Min.Y < blobs[j].Bounds.Min.Y
		}
		return blobs[i].Bounds.Min.X < blobs[j].Bounds.Min.X
	})
}

// sampleColorHex returns the hex color (#RRGGBB) of a pixel.
// No bounds checking is performed; caller must ensure coordinates are valid.
func sampleColorHex(img image.Image, x, y int) string {
	r, g, b, _ := img.At(x, y).RGBA()
	return fmt.Sprintf("#%02X%02X%02X", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
