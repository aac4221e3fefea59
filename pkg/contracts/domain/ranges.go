package domain

// Range is the observed (min, max) of one target column within one group.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Extend returns the range widened to include v.
func (r Range) Extend(v float64) Range {
	if v < r.Min {
		r.Min = v
	}
	if v > r.Max {
		r.Max = v
	}
	return r
}

// Scale maps v into [0, 1] relative to the range; a degenerate range yields 0.
func (r Range) Scale(v float64) float64 {
	if r.Max == r.Min {
		return 0
	}
	return (v - r.Min) / (r.Max - r.Min)
}
