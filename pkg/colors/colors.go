// Package colors validates and normalizes the color values carried by layer
// options: hex colors, label colormaps and intensity color ranges.
//
// Named colors and named colormaps are resolved through collaborator hooks
// ([SetNameResolver], [SetColormapResolver]) so the core carries no color
// name tables of its own. Without a registered resolver, hex strings are the
// only accepted color form and the default colormap is generated.
package colors

import (
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/layerview/layerview/pkg/errors"
)

// hexColorRe matches #RGB, #RGBA, #RRGGBB and #RRGGBBAA.
var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// NameResolver resolves a color name (e.g. "tomato") to a hex string.
type NameResolver func(name string) (string, error)

// ColormapResolver resolves a colormap name to an ordered list of hex colors.
type ColormapResolver func(name string) ([]string, error)

var (
	nameResolver     NameResolver
	colormapResolver ColormapResolver
)

// SetNameResolver registers the collaborator used to resolve non-hex color
// names. Passing nil restores the default (names are rejected).
func SetNameResolver(r NameResolver) { nameResolver = r }

// SetColormapResolver registers the collaborator used to resolve named
// colormaps. Passing nil restores the generated default palette.
func SetColormapResolver(r ColormapResolver) { colormapResolver = r }

// Parse validates a color string and returns its normalized form.
// Hex colors (3, 4, 6 or 8 digits) are lowercased and returned as-is;
// anything else goes through the registered name resolver.
func Parse(color string) (string, error) {
	if hexColorRe.MatchString(color) {
		return strings.ToLower(color), nil
	}
	if nameResolver == nil {
		return "", errors.New(errors.ErrCodeInvalidColor,
			"invalid color %q: not a hex color and no name resolver is registered", color)
	}
	hex, err := nameResolver(color)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeCollaboratorColormap, err, "invalid color name %q", color)
	}
	if !hexColorRe.MatchString(hex) {
		return "", errors.New(errors.ErrCodeCollaboratorColormap,
			"name resolver returned a non-hex color %q for %q", hex, color)
	}
	return strings.ToLower(hex), nil
}

// DefaultPaletteSize is the number of colors in the generated fallback palette.
const DefaultPaletteSize = 14

// ResolveNamedColormap returns the ordered color list for a colormap name.
// An empty name (or "default" when no resolver is registered) yields a
// generated palette of [DefaultPaletteSize] visually distinct colors.
func ResolveNamedColormap(name string) ([]string, error) {
	if colormapResolver != nil && name != "" {
		cm, err := colormapResolver(name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCollaboratorColormap, err, "resolve colormap %q", name)
		}
		return normalizeList(cm)
	}
	if name == "" || name == "default" {
		return generatedPalette(DefaultPaletteSize), nil
	}
	// No resolver: a single color name is still a valid "colormap".
	c, err := Parse(name)
	if err != nil {
		return nil, err
	}
	return []string{c}, nil
}

// generatedPalette builds a deterministic palette of visually distinct
// colors spread around the hue wheel with soft saturation and lightness.
func generatedPalette(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		h := float64(i) * 360.0 / float64(n)
		c := colorful.Hsl(h, 0.55, 0.70)
		out = append(out, c.Clamped().Hex())
	}
	return out
}

func normalizeList(colors []string) ([]string, error) {
	out := make([]string, len(colors))
	for i, c := range colors {
		p, err := Parse(c)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
