package geom

import "github.com/layerview/layerview/pkg/errors"

// FitMode selects which ratio is used when scaling a shape onto a target
// rectangle while preserving the shape's center and aspect ratio.
type FitMode string

const (
	// FitWidth scales the shape so its width matches the target width.
	FitWidth FitMode = "fit_width"
	// FitHeight scales the shape so its height matches the target height.
	FitHeight FitMode = "fit_height"
	// FitInner scales by min(ratioW, ratioH): the shape fits entirely
	// inside the target.
	FitInner FitMode = "fit_inner"
	// FitOuter scales by max(ratioW, ratioH): the shape fully covers
	// the target.
	FitOuter FitMode = "fit_outer"
	// FitCentered applies no scaling; the shape is only recentered.
	FitCentered FitMode = "centered"
)

// Valid reports whether m is one of the defined fit modes.
func (m FitMode) Valid() bool {
	switch m {
	case FitWidth, FitHeight, FitInner, FitOuter, FitCentered:
		return true
	}
	return false
}

// ParseFitMode converts a string to a FitMode.
func ParseFitMode(s string) (FitMode, error) {
	m := FitMode(s)
	if !m.Valid() {
		return "", errors.New(errors.ErrCodeInvalidOption,
			"invalid fit mode %q (expected fit_width, fit_height, fit_inner, fit_outer or centered)", s)
	}
	return m, nil
}
