package config

import (
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/ironsheep/searchstims/internal/placement"
	"github.com/ironsheep/searchstims/internal/stimulus"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks the whole config, including every resolved stimulus against
// the palette, so that a batch fails before any image is written.
func (c *Config) Validate() error {
	g := c.General
	if len(c.Stimuli) == 0 {
		return fmt.Errorf("%w: no stimuli defined", ErrInvalid)
	}
	if g.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalid, g.Workers)
	}
	if err := checkSetSizes(g.SetSizes); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log level %q: %v", ErrInvalid, c.Log.Level, err)
	}

	pal, err := stimulus.NewPalette(c.Palette)
	if err != nil {
		return fmt.Errorf("%w: palette: %v", ErrInvalid, err)
	}

	names := make(map[string]struct{}, len(c.Stimuli))
	for i, s := range c.Stimuli {
		if s.Name == "" {
			return fmt.Errorf("%w: stimulus %d has no name", ErrInvalid, i)
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("%w: duplicate stimulus name %q", ErrInvalid, s.Name)
		}
		names[s.Name] = struct{}{}

		spec, err := c.Resolve(i)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if err := spec.Validate(pal); err != nil {
			return fmt.Errorf("%w: stimulus %q: %v", ErrInvalid, s.Name, err)
		}
	}
	return nil
}

// Validate checks a resolved stimulus. Infeasible uniqueness is not detected
// here; it depends on the image counts and is reported by the placement engine.
func (s StimulusSpec) Validate(pal *stimulus.Palette) error {
	if err := s.Placement.Validate(); err != nil {
		return err
	}
	if err := s.Render.Validate(); err != nil {
		return err
	}
	if err := checkSetSizes(s.SetSizes); err != nil {
		return err
	}
	if s.Placement.Grid != nil {
		for _, n := range s.SetSizes {
			if n > s.Placement.Grid.NumCells() {
				return fmt.Errorf("%w: set size %d cannot be greater than number of elements in grid, %d",
					placement.ErrInvalidSetSize, n, s.Placement.Grid.NumCells())
			}
		}
	}
	for _, n := range append(append([]int(nil), s.Present...), s.Absent...) {
		if n < 0 {
			return fmt.Errorf("number of images must be non-negative, got %d", n)
		}
	}
	for _, name := range []string{s.Render.TargetColor, s.Render.DistractorColor, s.Render.AltDistractorColor, s.Background} {
		if name == "" {
			continue
		}
		if _, err := pal.Color(name); err != nil {
			return err
		}
	}
	return nil
}

func checkSetSizes(sizes []int) error {
	if len(sizes) == 0 {
		return fmt.Errorf("%w: set_sizes is empty", ErrInvalid)
	}
	for _, n := range sizes {
		if n <= 0 {
			return fmt.Errorf("%w: set sizes must be positive, got %d", ErrInvalid, n)
		}
	}
	return nil
}
