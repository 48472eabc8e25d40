// Package detection finds the items drawn on a stimulus without relying on
// its metadata.
//
// The audit uses it to confirm that what a ledger claims is actually on the
// image: the right number of items, each where the metadata puts it and, for
// bar stimuli, with the expected orientation.
//
// # Algorithm
//
//  1. Foreground mask: a pixel is foreground when any channel differs from the
//     background color by more than the tolerance.
//  2. Blobs: 8-connected foreground pixels are grouped with an iterative flood
//     fill.
//  3. Filtering: blobs smaller than the minimum area are dropped as noise.
//
// Glyph items (digits, T and L) can fall apart into several blobs when
// rendered small. Use MergeWithin to join the blobs that share an item
// bounding box before counting.
//
// # Coordinate System
//
// Coordinates follow the image convention: origin at the top-left, X to the
// right, Y down. Bounds are inclusive on the top-left and exclusive on the
// bottom-right, like image.Rectangle.
package detection
