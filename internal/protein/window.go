package protein

import "fmt"

// Window bounds a search target: fragment length or overlap size.
type Window struct {
	Min   int `mapstructure:"min" yaml:"min"`
	Ideal int `mapstructure:"ideal" yaml:"ideal"`
	Max   int `mapstructure:"max" yaml:"max"`
}

// Default windows used by the CLI when nothing is configured.
var (
	DefaultLength  = Window{Min: 150, Ideal: 384, Max: 400}
	DefaultOverlap = Window{Min: 20, Ideal: 30, Max: 40}
)

// Validate checks 0 < Min <= Ideal <= Max.
func (w Window) Validate() error {
	if w.Min <= 0 {
		return fmt.Errorf("%w: min %d must be greater than 0", ErrInvalidWindow, w.Min)
	}
	if w.Min > w.Ideal {
		return fmt.Errorf("%w: min %d is greater than ideal %d", ErrInvalidWindow, w.Min, w.Ideal)
	}
	if w.Ideal > w.Max {
		return fmt.Errorf("%w: ideal %d is greater than max %d", ErrInvalidWindow, w.Ideal, w.Max)
	}
	return nil
}

// Contains reports whether n lies within [Min, Max].
func (w Window) Contains(n int) bool {
	return n >= w.Min && n <= w.Max
}

// WithMax returns a copy of w with Max replaced.
func (w Window) WithMax(max int) Window {
	w.Max = max
	return w
}

// Candidates returns the search order over the window: Ideal up to Max,
// then Ideal-1 down to Min.
func (w Window) Candidates() []int {
	out := make([]int, 0, w.Max-w.Min+1)
	for n := w.Ideal; n <= w.Max; n++ {
		out = append(out, n)
	}
	for n := w.Ideal - 1; n >= w.Min; n-- {
		out = append(out, n)
	}
	return out
}

func (w Window) String() string {
	return fmt.Sprintf("{min: %d, ideal: %d, max: %d}", w.Min, w.Ideal, w.Max)
}

// ValidatePair validates a length and overlap window together. The largest
// overlap must be shorter than the shortest fragment so that every step
// advances the next fragment's start.
func ValidatePair(length, overlap Window) error {
	if err := length.Validate(); err != nil {
		return fmt.Errorf("length: %w", err)
	}
	if err := overlap.Validate(); err != nil {
		return fmt.Errorf("overlap: %w", err)
	}
	if overlap.Max >= length.Min {
		return fmt.Errorf("%w: max overlap %d must be less than min length %d", ErrInvalidWindow, overlap.Max, length.Min)
	}
	return nil
}
