package colors

import (
	"github.com/layerview/layerview/pkg/errors"
)

// Colormap maps integer label values to colors. Label 0 is reserved for
// "no label" and maps to an ordered list of colors (cycled over unmapped
// labels by the front-end); every non-zero label maps to a single color.
type Colormap struct {
	// Background is the color cycle attached to the reserved 0 entry.
	Background []string
	// ByLabel holds explicit single colors for non-zero labels.
	ByLabel map[uint32]string
}

// ColormapFromList builds a colormap whose 0 entry cycles the given colors.
func ColormapFromList(list []string) (Colormap, error) {
	bg, err := normalizeList(list)
	if err != nil {
		return Colormap{}, err
	}
	return Colormap{Background: bg, ByLabel: map[uint32]string{}}, nil
}

// ColormapFromName resolves a named colormap into the 0 entry.
func ColormapFromName(name string) (Colormap, error) {
	list, err := ResolveNamedColormap(name)
	if err != nil {
		return Colormap{}, err
	}
	return Colormap{Background: list, ByLabel: map[uint32]string{}}, nil
}

// CheckLabelColormap normalizes the loosely-typed colormap forms accepted
// by layer options into a Colormap:
//
//   - nil resolves the default named colormap
//   - string resolves a named colormap
//   - []string / []any of strings becomes the 0-entry color cycle
//   - Colormap and map[uint32]string / map[int]any are per-label colors
//
// When nullLabel is false the map form has no reserved 0 entry: every key
// is shifted up by one so that callers may use 0 as a regular label
// (node and edge colormaps of graph layers work this way).
func CheckLabelColormap(v any, nullLabel bool) (Colormap, error) {
	switch cm := v.(type) {
	case nil:
		return ColormapFromName("")
	case string:
		return ColormapFromName(cm)
	case []string:
		return ColormapFromList(cm)
	case []any:
		list := make([]string, len(cm))
		for i, c := range cm {
			s, ok := c.(string)
			if !ok {
				return Colormap{}, errors.New(errors.ErrCodeInvalidColormap,
					"invalid colormap entry %v: must be a color string", c)
			}
			list[i] = s
		}
		return ColormapFromList(list)
	case Colormap:
		return normalizeColormap(cm)
	case map[uint32]string:
		byLabel := make(map[uint32]string, len(cm))
		for k, c := range cm {
			if !nullLabel {
				k++
			}
			byLabel[k] = c
		}
		return normalizeColormap(Colormap{ByLabel: byLabel})
	case map[int]any:
		byLabel := make(map[uint32]string, len(cm))
		var background []string
		for k, raw := range cm {
			if k < 0 {
				return Colormap{}, errors.New(errors.ErrCodeInvalidColormap,
					"invalid colormap key %d: labels are non-negative", k)
			}
			key := uint32(k)
			if !nullLabel {
				key++
			}
			if key == 0 {
				list, err := CheckLabelColormap(raw, true)
				if err != nil {
					return Colormap{}, err
				}
				background = list.Background
				continue
			}
			s, ok := raw.(string)
			if !ok {
				return Colormap{}, errors.New(errors.ErrCodeInvalidColormap,
					"invalid colormap value %v for label %d: must be a color string", raw, k)
			}
			byLabel[key] = s
		}
		return normalizeColormap(Colormap{Background: background, ByLabel: byLabel})
	default:
		return Colormap{}, errors.New(errors.ErrCodeInvalidColormap,
			"invalid colormap %v: must be a name, a color list or a label-to-color map", v)
	}
}

func normalizeColormap(cm Colormap) (Colormap, error) {
	out := Colormap{ByLabel: make(map[uint32]string, len(cm.ByLabel))}
	var err error
	if out.Background, err = normalizeList(cm.Background); err != nil {
		return Colormap{}, err
	}
	for k, c := range cm.ByLabel {
		if k == 0 {
			return Colormap{}, errors.New(errors.ErrCodeInvalidColormap,
				"label 0 is reserved and cannot map to a single color")
		}
		p, perr := Parse(c)
		if perr != nil {
			return Colormap{}, perr
		}
		out.ByLabel[k] = p
	}
	return out, nil
}

// Encode returns the JSON-serializable form transmitted in layer options:
// the 0 key carries the background cycle, other keys single colors.
func (c Colormap) Encode() map[uint32]any {
	out := make(map[uint32]any, len(c.ByLabel)+1)
	if len(c.Background) > 0 {
		out[0] = c.Background
	}
	for k, v := range c.ByLabel {
		out[k] = v
	}
	return out
}
