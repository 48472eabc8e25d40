// Package stimulus turns placements into rendered visual search displays.
//
// A Maker owns one placement.Engine and one ItemRenderer. Planning a group of
// images (cells, jitter, roles and distractor classes) consumes the engine's
// random source and must run on a single goroutine. The resulting Layouts carry
// everything rendering needs, so Render may be called concurrently.
//
// # Flavors
//
//   - rectangle: vertical bars, target and distractor differ only in color
//   - rectangle_conjunction: red vertical target among green vertical and red
//     horizontal distractors
//   - number: digit glyphs, 2 among 5 by default
//   - tl: rotated T among L
//   - xo: x target among x and o distractors of other colors
//
// Glyph flavors use the embedded Go Bold font, so no font files are needed at
// runtime.
package stimulus
