package layers

import (
	"fmt"
	"strconv"

	"github.com/layerview/layerview/pkg/colors"
	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/geom"
)

// Options is the string-keyed, JSON-serializable option mapping attached to
// a layer. Values are normalized by the per-key validators before storage.
type Options map[string]any

// Clone returns a shallow copy.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Encoded returns a JSON-serializable copy of the options, flattening
// geometry and color values to their wire forms.
func (o Options) Encoded() map[string]any {
	out := make(map[string]any, len(o))
	for k, v := range o {
		switch t := v.(type) {
		case geom.Rect:
			out[k] = []float64{t.H, t.W, t.Y, t.X}
		case colors.Colormap:
			out[k] = t.Encode()
		case colors.Range:
			out[k] = t.Encode()
		default:
			out[k] = v
		}
	}
	return out
}

// BlendModes lists the recognized compositing modes, matching the CSS
// mix-blend-mode keywords the front-end applies.
var BlendModes = []string{
	"normal", "multiply", "screen", "overlay",
	"darken", "lighten", "color_dodge", "color_burn",
	"hard_light", "soft_light", "difference", "exclusion",
	"hue", "saturation", "color", "luminosity",
}

// ZoomScalings lists the recognized stroke-width scaling behaviors under
// viewport zoom.
var ZoomScalings = []string{"none", "scene", "view", "view_log", "view_sqrt"}

// Validator normalizes and validates one option value.
// It returns the value to store.
type Validator func(v any) (any, error)

func validateBool(key string) Validator {
	return func(v any) (any, error) {
		b, ok := v.(bool)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidOption, "%s must be a bool, got %v", key, v)
		}
		return b, nil
	}
}

func validateString(key string) Validator {
	return func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidOption, "%s must be a string, got %v", key, v)
		}
		return s, nil
	}
}

func validateEnum(key string, allowed []string) Validator {
	return func(v any) (any, error) {
		s, ok := v.(string)
		if ok {
			for _, a := range allowed {
				if s == a {
					return s, nil
				}
			}
		}
		return nil, errors.New(errors.ErrCodeInvalidOption, "%s must be one of %v, got %v", key, allowed, v)
	}
}

func validateOpacity(v any) (any, error) {
	f, err := toFloat(v)
	if err != nil || f < 0 || f > 1 {
		return nil, errors.New(errors.ErrCodeInvalidOption, "opacity must be a number between 0 and 1, got %v", v)
	}
	return f, nil
}

func validateNumber(key string) Validator {
	return func(v any) (any, error) {
		f, err := toFloat(v)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidOption, "%s must be a number, got %v", key, v)
		}
		return f, nil
	}
}

// validateDomain accepts a Rect or any 4-element numeric sequence in
// (h, w, y, x) order.
func validateDomain(v any) (any, error) {
	switch t := v.(type) {
	case geom.Rect:
		return t, nil
	case [4]float64:
		return geom.Rect{H: t[0], W: t[1], Y: t[2], X: t[3]}, nil
	case []float64:
		if len(t) == 4 {
			return geom.Rect{H: t[0], W: t[1], Y: t[2], X: t[3]}, nil
		}
	case []any:
		if len(t) == 4 {
			var vals [4]float64
			ok := true
			for i, e := range t {
				f, err := toFloat(e)
				if err != nil {
					ok = false
					break
				}
				vals[i] = f
			}
			if ok {
				return geom.Rect{H: vals[0], W: vals[1], Y: vals[2], X: vals[3]}, nil
			}
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidOption, "domain must be a rect or a list of 4 numbers, got %v", v)
}

// commonValidators covers the option keys every layer kind recognizes.
func commonValidators() map[string]Validator {
	return map[string]Validator{
		"visible":    validateBool("visible"),
		"opacity":    validateOpacity,
		"blend_mode": validateEnum("blend_mode", BlendModes),
		"label":      validateString("label"),
		"z_index":    validateNumber("z_index"),
		"foreground": validateBool("foreground"),
		"domain":     validateDomain,
	}
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case string:
		return strconv.ParseFloat(t, 64)
	}
	return 0, fmt.Errorf("not a number: %v", v)
}
