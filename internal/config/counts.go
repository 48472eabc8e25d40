package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Counts is a number of images, given either as one total split evenly over
// the set sizes or as an explicit list with one entry per set size.
type Counts struct {
	Total      int
	PerSetSize []int
}

// UnmarshalYAML accepts a scalar or a sequence.
func (c *Counts) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var n int
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("line %d: count must be an integer or a list of integers: %w", value.Line, err)
		}
		*c = Counts{Total: n}
	case yaml.SequenceNode:
		var list []int
		if err := value.Decode(&list); err != nil {
			return fmt.Errorf("line %d: count must be an integer or a list of integers: %w", value.Line, err)
		}
		*c = Counts{PerSetSize: list}
	default:
		return fmt.Errorf("line %d: count must be an integer or a list of integers", value.Line)
	}
	return nil
}

// MarshalYAML writes the form the value was read in.
func (c Counts) MarshalYAML() (interface{}, error) {
	if c.PerSetSize != nil {
		return c.PerSetSize, nil
	}
	return c.Total, nil
}

// IsList reports whether the counts were given per set size.
func (c Counts) IsList() bool {
	return c.PerSetSize != nil
}

// ForSetSizes returns the number of images for each set size. A total is
// divided with integer division, so any remainder is dropped.
func (c Counts) ForSetSizes(setSizes []int) ([]int, error) {
	if c.IsList() {
		if len(c.PerSetSize) != len(setSizes) {
			return nil, fmt.Errorf("list of counts has %d entries but there are %d set sizes",
				len(c.PerSetSize), len(setSizes))
		}
		return append([]int(nil), c.PerSetSize...), nil
	}
	if len(setSizes) == 0 {
		return nil, fmt.Errorf("no set sizes to split %d images over", c.Total)
	}
	out := make([]int, len(setSizes))
	for i := range out {
		out[i] = c.Total / len(setSizes)
	}
	return out, nil
}
