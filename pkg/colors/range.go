package colors

import (
	"sort"
	"strconv"

	"github.com/layerview/layerview/pkg/errors"
)

// Stop is one color stop of a Range: a single color, or a pair used for
// values falling on either side of the stop.
type Stop []string

// Range maps intensity values to colors through ordered stops.
type Range struct {
	stops map[float64]Stop
}

// NewRange validates a stop map whose values are color strings or pairs
// of color strings.
func NewRange(stops map[float64]any) (Range, error) {
	out := Range{stops: make(map[float64]Stop, len(stops))}
	for at, raw := range stops {
		switch v := raw.(type) {
		case string:
			c, err := Parse(v)
			if err != nil {
				return Range{}, err
			}
			out.stops[at] = Stop{c}
		case [2]string:
			lo, err := Parse(v[0])
			if err != nil {
				return Range{}, err
			}
			hi, err := Parse(v[1])
			if err != nil {
				return Range{}, err
			}
			out.stops[at] = Stop{lo, hi}
		default:
			return Range{}, errors.New(errors.ErrCodeInvalidColor,
				"invalid color range stop %v at %v: must be a color or a pair of colors", raw, at)
		}
	}
	return out, nil
}

// Stops returns the stop positions in ascending order.
func (r Range) Stops() []float64 {
	out := make([]float64, 0, len(r.stops))
	for at := range r.stops {
		out = append(out, at)
	}
	sort.Float64s(out)
	return out
}

// At returns the stop registered at the given position.
func (r Range) At(pos float64) (Stop, bool) {
	s, ok := r.stops[pos]
	return s, ok
}

// Encode returns the JSON-serializable option form: stop position to
// color or color pair. Positions become string keys, since JSON objects
// cannot carry numeric keys.
func (r Range) Encode() map[string]any {
	out := make(map[string]any, len(r.stops))
	for at, s := range r.stops {
		key := strconv.FormatFloat(at, 'g', -1, 64)
		if len(s) == 1 {
			out[key] = s[0]
		} else {
			out[key] = []string(s)
		}
	}
	return out
}
