// Package layers implements the visualization entities of a 2D view: five
// layer kinds over one shared viewport coordinate space, and the List
// collection that keeps them geometrically consistent and batches their
// change notifications towards the transport binding.
package layers

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/layerview/layerview/pkg/encoding"
	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/events"
	"github.com/layerview/layerview/pkg/geom"
)

// Layer kind tags.
const (
	KindImage     = "image"
	KindLabel     = "label"
	KindIntensity = "intensity"
	KindGraph     = "graph"
	KindQuiver    = "quiver"
)

// DomainMode tells how a layer's domain tracks the shared main domain:
// unset (never assigned), pinned by the user, or auto-fitted with a FitMode.
type DomainMode string

const (
	// ModeUnset marks a layer whose domain was never assigned.
	ModeUnset DomainMode = ""
	// ModeManual marks a user-pinned domain.
	ModeManual DomainMode = "manual"
)

// ModeFit wraps a FitMode as a DomainMode.
func ModeFit(m geom.FitMode) DomainMode { return DomainMode(m) }

// FitMode returns the wrapped FitMode and whether the mode is one.
func (m DomainMode) FitMode() (geom.FitMode, bool) {
	fm := geom.FitMode(m)
	return fm, fm.Valid()
}

// Layer is one visualization entity: a validated data buffer, an option
// set and a domain rectangle in the shared viewport space.
type Layer interface {
	// ID is the process-unique identity used as collection key.
	ID() string

	// Kind is the immutable layer type tag.
	Kind() string

	// Revision increments on every data or options change. Together with
	// ID it fingerprints the encoded payload for caching.
	Revision() uint64

	// Options returns a copy of the current option mapping.
	Options() Options

	// Option returns one option value, nil when unset.
	Option(key string) any

	// SetOptions validates and applies an option mapping. In strict mode
	// any invalid key or value fails the whole call and nothing is
	// applied. In lenient mode invalid entries are skipped. Exactly one
	// options-changed notification fires, carrying the applied keys.
	SetOptions(opts Options, strict bool) error

	// Shape is the native bounding rect of the current buffer, anchored
	// at the origin.
	Shape() geom.Rect

	// Domain is the rectangle the buffer is mapped onto in viewport space.
	Domain() geom.Rect

	// DomainMode reports how the domain tracks the main domain.
	DomainMode() DomainMode

	// SetDomain assigns the domain. Accepts a geom.Rect (pins manual
	// mode), a geom.FitMode (auto-fit mode), or nil (one-time width-fit
	// snap to the main domain, then manual).
	SetDomain(value any) error

	// SetMainShape is called by the owning list when the shared main
	// domain changes. Manual layers are carried by the supplied
	// transform (or one derived from the previous main domain); FitMode
	// layers re-fit against the new main domain. via may be nil, a
	// geom.Transform, a geom.Rect or a geom.FitMode.
	SetMainShape(main geom.Rect, via any) error

	// GetData encodes the current buffer. maxH/maxW of 0 disable buffer
	// resizing.
	GetData(maxH, maxW int) (encoding.LayerData, error)

	// UpdateData replaces the buffer with kind-specific new content,
	// re-validating it.
	UpdateData(data any) error

	// FetchItem returns the kind-specific value under a buffer pixel.
	FetchItem(x, y int) (map[string]any, error)

	// OnDataChange subscribes to buffer replacements.
	OnDataChange(fn func(Layer)) events.Unbind

	// OnOptionsChange subscribes to applied option changes.
	OnOptionsChange(fn func(Layer, Options)) events.Unbind

	// Duplicate returns a copy with a fresh identity and no subscribers.
	Duplicate() Layer
}

// base carries the state and behavior shared by all layer kinds. Each
// variant embeds it and binds itself as self so domain computations see the
// variant's Shape.
type base struct {
	id         string
	kind       string
	rev        uint64
	opts       Options
	validators map[string]Validator
	mainDomain geom.Rect
	mode       DomainMode

	self      Layer
	onData    map[string]func(Layer)
	onOptions map[string]func(Layer, Options)
}

func newBase(kind string, extra map[string]Validator) *base {
	validators := commonValidators()
	for k, v := range extra {
		validators[k] = v
	}
	return &base{
		id:   uuid.NewString(),
		kind: kind,
		opts: Options{
			"visible":    true,
			"opacity":    1.0,
			"z_index":    -1.0,
			"foreground": false,
			"label":      "",
			"domain":     geom.Rect{},
		},
		validators: validators,
		onData:     map[string]func(Layer){},
		onOptions:  map[string]func(Layer, Options){},
	}
}

// bind sets the variant back-reference. Must be called by every
// constructor before any notification fires.
func (b *base) bind(self Layer) { b.self = self }

func (b *base) ID() string       { return b.id }
func (b *base) Kind() string     { return b.kind }
func (b *base) Revision() uint64 { return b.rev }

func (b *base) Options() Options { return b.opts.Clone() }

func (b *base) Option(key string) any { return b.opts[key] }

func (b *base) SetOptions(opts Options, strict bool) error {
	applied := make(Options, len(opts))
	for k, v := range opts {
		validator, ok := b.validators[k]
		if !ok {
			if strict {
				return errors.New(errors.ErrCodeInvalidOption, "unknown option %q for %s layer", k, b.kind)
			}
			continue
		}
		nv, err := validator(v)
		if err != nil {
			if strict {
				return err
			}
			continue
		}
		applied[k] = nv
	}
	// Nothing applied, nothing to tell anyone.
	if len(applied) == 0 {
		return nil
	}
	for k, v := range applied {
		b.opts[k] = v
	}
	b.notifyOptionsChange(applied)
	return nil
}

func (b *base) Domain() geom.Rect {
	if r, ok := b.opts["domain"].(geom.Rect); ok {
		return r
	}
	return geom.Rect{}
}

func (b *base) DomainMode() DomainMode { return b.mode }

func (b *base) SetDomain(value any) error {
	shape := b.self.Shape()
	var domain geom.Rect
	switch v := value.(type) {
	case nil:
		if shape.IsEmpty() {
			return errors.New(errors.ErrCodeInvalidDomain,
				"cannot infer a domain for %s layer: empty shape", b.kind)
		}
		fitted, err := shape.Fit(b.mainDomain, geom.FitWidth)
		if err != nil {
			return err
		}
		domain, b.mode = fitted, ModeManual
	case geom.FitMode:
		if !v.Valid() {
			return errors.New(errors.ErrCodeInvalidDomain, "invalid fit mode %q", string(v))
		}
		if shape.IsEmpty() {
			return errors.New(errors.ErrCodeInvalidDomain,
				"cannot fit %s layer with an empty shape", b.kind)
		}
		fitted, err := shape.Fit(b.mainDomain, v)
		if err != nil {
			return err
		}
		domain, b.mode = fitted, ModeFit(v)
	case geom.Rect:
		if v.IsEmpty() {
			return b.SetDomain(nil)
		}
		domain, b.mode = v, ModeManual
	case string:
		return b.SetDomain(geom.FitMode(v))
	default:
		return errors.New(errors.ErrCodeInvalidDomain, "invalid domain value %v", value)
	}
	return b.SetOptions(Options{"domain": domain}, true)
}

func (b *base) SetMainShape(main geom.Rect, via any) error {
	previous := b.mainDomain
	b.mainDomain = main

	if fm, ok := b.mode.FitMode(); ok {
		return b.SetDomain(fm)
	}

	// Manual or unset: carry the current domain along the main domain's
	// own transformation.
	switch v := via.(type) {
	case nil:
		t, err := geom.TransformFromRects(previous, main)
		if err != nil {
			return err
		}
		return b.SetDomain(t.ApplyRect(b.Domain()))
	case geom.Transform:
		return b.SetDomain(v.ApplyRect(b.Domain()))
	case geom.Rect, geom.FitMode, string:
		return b.SetDomain(v)
	default:
		return errors.New(errors.ErrCodeInvalidDomain, "invalid domain transform %v", via)
	}
}

// finishData stamps the kind tag on an encoded payload.
func (b *base) finishData(d encoding.LayerData, err error) (encoding.LayerData, error) {
	if err != nil {
		return encoding.LayerData{}, err
	}
	if d.Type == "" {
		d.Type = b.kind
	}
	return d, nil
}

func (b *base) OnDataChange(fn func(Layer)) events.Unbind {
	id := uuid.NewString()
	b.onData[id] = fn
	return func() { delete(b.onData, id) }
}

func (b *base) OnOptionsChange(fn func(Layer, Options)) events.Unbind {
	id := uuid.NewString()
	b.onOptions[id] = fn
	return func() { delete(b.onOptions, id) }
}

func (b *base) notifyDataChange() {
	b.rev++
	for _, fn := range b.onData {
		fn(b.self)
	}
}

func (b *base) notifyOptionsChange(changed Options) {
	b.rev++
	for _, fn := range b.onOptions {
		fn(b.self, changed)
	}
}

// duplicateBase copies the shared state for Duplicate implementations:
// fresh identity, copied options, no subscribers.
func (b *base) duplicateBase() *base {
	return &base{
		id:         uuid.NewString(),
		kind:       b.kind,
		opts:       b.opts.Clone(),
		validators: b.validators,
		mainDomain: b.mainDomain,
		mode:       b.mode,
		onData:     map[string]func(Layer){},
		onOptions:  map[string]func(Layer, Options){},
	}
}

// defaultLabel builds the auto-generated display label for a layer kind,
// e.g. "Image 01".
func defaultLabel(kind string, n int) string {
	title := kind
	if len(title) > 0 {
		title = string(title[0]-'a'+'A') + title[1:]
	}
	return fmt.Sprintf("%s %02d", title, n)
}
