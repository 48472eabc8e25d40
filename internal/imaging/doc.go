// Package imaging provides the pixel-level plumbing around rendered stimuli.
//
// It covers writing surfaces to disk and to base64 PNG, reading them back
// through a shared cache, sampling colors at item centers, cropping item
// bounding boxes, and drawing the placement grid over a display for previews.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive and Max is exclusive, as with image.Rectangle
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The remaining functions are
// stateless and can be called concurrently on different images.
//
// # Color Representation
//
// Sampled colors are reported as:
//   - Hex: 6-character format "#RRGGBB" (alpha excluded)
//   - RGB: 8-bit components (0-255)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// Color comparison uses CIE L*a*b* distance from go-colorful, which tracks
// perceived difference better than RGB distance.
package imaging
