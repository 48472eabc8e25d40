package batch

import (
	"fmt"
	"math/rand"

	"github.com/ironsheep/searchstims/internal/config"
	"github.com/ironsheep/searchstims/internal/placement"
	"github.com/ironsheep/searchstims/internal/stimulus"
)

// NewMaker builds the stimulus maker described by spec.
func NewMaker(spec config.StimulusSpec, pal *stimulus.Palette, rng *rand.Rand) (*stimulus.Maker, error) {
	engine, err := placement.NewEngine(spec.Placement, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create placement engine for %q: %w", spec.Name, err)
	}
	renderer, err := stimulus.NewRenderer(spec.Render, pal)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer for %q: %w", spec.Name, err)
	}
	bg, err := pal.Color(spec.Background)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve background for %q: %w", spec.Name, err)
	}
	return stimulus.NewMaker(spec.Name, engine, renderer, bg), nil
}
