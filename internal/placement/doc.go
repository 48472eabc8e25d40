// Package placement decides where the items of a visual search stimulus go.
//
// It implements the combinatorial core of the generator: the grid geometry that
// maps cell indices to pixel centers, the jitter sampler, the grid placement engine
// that plans a whole batch of cell combinations (optionally guaranteeing that no two
// images share the same geometry), the free-field engine that rejection-samples
// continuous centers under a minimum-distance constraint, and the role assignor that
// splits items into targets and distractors.
//
// # Coordinate System
//
// Sizes are always given as (height, width), matching the configuration files.
// Pixel centers are returned as parallel X and Y slices with (0,0) at the top-left
// corner of the window. Grid cells are indexed row-major from 0:
//
//	cell i -> row i/cols, column i%cols
//
// # Randomness
//
// Every Engine owns a *rand.Rand supplied by the caller. An Engine is not safe for
// concurrent use; the batch orchestrator plans a group sequentially and only then
// renders the planned images concurrently.
//
// # Error Handling
//
// Configuration problems wrap ErrInvalidConfig, ErrInvalidSetSize or
// ErrInvalidTargetCount and are reported before any sampling happens.
// A batch that cannot be made unique returns *InfeasibleError; a free-field layout
// that cannot be packed within the retry budget returns *GeometryError.
package placement
