package config

import (
	"fmt"

	"github.com/ironsheep/searchstims/internal/placement"
	"github.com/ironsheep/searchstims/internal/stimulus"
)

// StimulusSpec is a stimulus with every value resolved: its own settings, then
// the general section, then the built-in defaults.
type StimulusSpec struct {
	Name       string
	Placement  placement.Config
	Render     stimulus.Options
	Background string

	SetSizes []int
	// Present and Absent hold the number of images per set size, in SetSizes order.
	Present []int
	Absent  []int
}

// Resolve merges stimulus i with the general section and the defaults.
func (c *Config) Resolve(i int) (StimulusSpec, error) {
	if i < 0 || i >= len(c.Stimuli) {
		return StimulusSpec{}, fmt.Errorf("stimulus index %d out of range [0, %d)", i, len(c.Stimuli))
	}
	s := c.Stimuli[i]
	g := c.General

	flavor, err := stimulus.ParseFlavor(s.Flavor)
	if err != nil {
		return StimulusSpec{}, fmt.Errorf("stimulus %q: %w", s.Name, err)
	}

	geo := s.Geometry.over(g.Geometry)
	spec := StimulusSpec{Name: s.Name}
	spec.Placement = placement.Config{
		Window:   sizeOf(pairOr(geo.WindowSize, DefaultWindowSize)),
		ItemBBox: sizeOf(pairOr(geo.ItemBBoxSize, DefaultItemBBoxSize)),
		Jitter:   intOr(geo.Jitter, DefaultJitter),
	}
	if geo.BorderSize != nil {
		b := sizeOf(*geo.BorderSize)
		spec.Placement.Border = &b
	}
	if geo.FreeField != nil && *geo.FreeField {
		spec.Placement.MinCenterDist = geo.MinCenterDist
	} else {
		gs := pairOr(geo.GridSize, DefaultGridSize)
		spec.Placement.Grid = &placement.GridSpec{Rows: gs[0], Cols: gs[1]}
	}

	r := stimulus.DefaultOptions(flavor)
	r.ItemBBox = spec.Placement.ItemBBox
	setIf(&r.TargetColor, s.TargetColor)
	setIf(&r.DistractorColor, s.DistractorColor)
	setIf(&r.AltDistractorColor, s.AltDistractorColor)
	if s.TargetNumber != nil {
		r.TargetNumber = *s.TargetNumber
	}
	if s.DistractorNumber != nil {
		r.DistractorNumber = *s.DistractorNumber
	}
	if s.TargetRotation != nil {
		r.TargetRotation = *s.TargetRotation
	}
	spec.Render = r

	spec.Background = DefaultBackground
	setIf(&spec.Background, s.BackgroundColor)

	spec.SetSizes = g.SetSizes
	if len(s.SetSizes) > 0 {
		spec.SetSizes = s.SetSizes
	}
	present, absent := g.NumTargetPresent, g.NumTargetAbsent
	if s.NumTargetPresent != nil {
		present = *s.NumTargetPresent
	}
	if s.NumTargetAbsent != nil {
		absent = *s.NumTargetAbsent
	}
	if spec.Present, err = present.ForSetSizes(spec.SetSizes); err != nil {
		return StimulusSpec{}, fmt.Errorf("stimulus %q num_target_present: %w", s.Name, err)
	}
	if spec.Absent, err = absent.ForSetSizes(spec.SetSizes); err != nil {
		return StimulusSpec{}, fmt.Errorf("stimulus %q num_target_absent: %w", s.Name, err)
	}
	return spec, nil
}

// ResolveAll resolves every stimulus in file order.
func (c *Config) ResolveAll() ([]StimulusSpec, error) {
	specs := make([]StimulusSpec, 0, len(c.Stimuli))
	for i := range c.Stimuli {
		spec, err := c.Resolve(i)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// over returns g with every unset field taken from base.
func (g Geometry) over(base Geometry) Geometry {
	if g.WindowSize == nil {
		g.WindowSize = base.WindowSize
	}
	if g.GridSize == nil {
		g.GridSize = base.GridSize
	}
	if g.FreeField == nil {
		g.FreeField = base.FreeField
	}
	if g.BorderSize == nil {
		g.BorderSize = base.BorderSize
	}
	if g.ItemBBoxSize == nil {
		g.ItemBBoxSize = base.ItemBBoxSize
	}
	if g.Jitter == nil {
		g.Jitter = base.Jitter
	}
	if g.MinCenterDist == nil {
		g.MinCenterDist = base.MinCenterDist
	}
	return g
}

func sizeOf(p Pair) placement.Size {
	return placement.Size{H: p[0], W: p[1]}
}

func pairOr(p *Pair, def Pair) Pair {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
