// Package view binds a layer collection to a rendering front-end: it
// serializes layer payloads and options on change, tracks the shared
// viewport transform, and fans inbound pointer events out to subscribers.
package view

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/layerview/layerview/pkg/cache"
	"github.com/layerview/layerview/pkg/encoding"
	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/events"
	"github.com/layerview/layerview/pkg/geom"
	"github.com/layerview/layerview/pkg/layers"
	"github.com/layerview/layerview/pkg/raster"
)

// StateSink receives the serialized view state. Implementations transmit
// it to the rendering client; the wire framing is theirs.
type StateSink interface {
	// SetLayersData replaces the alias-keyed encoded payload map.
	SetLayersData(data map[string][]byte)

	// SetLayersOptions replaces the alias-keyed serialized option map.
	SetLayersOptions(options map[string][]byte)

	// SetDomain pushes the main layer's domain.
	SetDomain(domain geom.Rect)

	// SetTransform pushes a target viewport transform (y, x, scale).
	SetTransform(y, x, scale float64)

	// SetLoading flags an ongoing state transmission.
	SetLoading(loading bool)

	// SetSyncGroup links this view's transform to a shared group id.
	SetSyncGroup(group string)
}

// NoopStateSink discards all state.
type NoopStateSink struct{}

func (NoopStateSink) SetLayersData(map[string][]byte)    {}
func (NoopStateSink) SetLayersOptions(map[string][]byte) {}
func (NoopStateSink) SetDomain(geom.Rect)                {}
func (NoopStateSink) SetTransform(float64, float64, float64) {}
func (NoopStateSink) SetLoading(bool)                    {}
func (NoopStateSink) SetSyncGroup(string)                {}

// Option configures a View2D.
type Option func(*View2D)

// WithCache caches encoded payloads so unchanged buffers are encoded once.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(v *View2D) { v.enc = encoding.NewCached(c, nil, ttl) }
}

// WithBufferSize caps the encoded buffer sizes pushed to the front-end.
func WithBufferSize(maxH, maxW int) Option {
	return func(v *View2D) { v.maxH, v.maxW = maxH, maxW }
}

// WithLogger routes transmission errors to the given logger.
func WithLogger(logger *log.Logger) Option {
	return func(v *View2D) { v.logger = logger }
}

// View2D is an interactive 2D view over a layer collection. It implements
// layers.Sink: collection notifications are re-encoded into front-end
// state pushed through the StateSink.
type View2D struct {
	*layers.List

	sink   StateSink
	enc    *encoding.Cached
	logger *log.Logger

	maxH, maxW int

	layersData map[string][]byte
	transform  [3]float64
	syncGroup  string

	transmitDepth int

	onClick events.Dispatcher[events.ClickEvent]
}

// New creates a view pushing state to sink. A nil sink discards state.
func New(sink StateSink, opts ...Option) *View2D {
	if sink == nil {
		sink = NoopStateSink{}
	}
	v := &View2D{
		sink:       sink,
		enc:        encoding.NewCached(nil, nil, 0),
		logger:     log.Default(),
		layersData: map[string][]byte{},
		transform:  [3]float64{0, 0, 1e-8},
	}
	for _, opt := range opts {
		opt(v)
	}
	v.List = layers.NewList(v)
	return v
}

// --- layers.Sink implementation ---

// LayersAdded transmits the new layers' payloads and the full option state.
func (v *View2D) LayersAdded(added []layers.Layer) {
	v.transmit(func() {
		v.sendData(added)
		v.sendAllOptions()
	})
}

// LayersRemoved retransmits the option state and drops every payload whose
// alias left the collection. The notification fires after the collection
// forgot the layer, so the departed aliases are found by difference.
func (v *View2D) LayersRemoved([]layers.Layer) {
	v.transmit(func() {
		v.sendAllOptions()
		data := make(map[string][]byte, v.Len())
		for _, alias := range v.Aliases() {
			if payload, ok := v.layersData[alias]; ok {
				data[alias] = payload
			}
		}
		v.layersData = data
		v.sink.SetLayersData(data)
	})
}

// LayersDataChanged re-encodes and transmits the changed payloads.
func (v *View2D) LayersDataChanged(changed []layers.Layer) {
	v.transmit(func() { v.sendData(changed) })
}

// LayersOptionsChanged retransmits the full option state; per-layer deltas
// are not worth a second wire format.
func (v *View2D) LayersOptionsChanged(map[layers.Layer]layers.Options) {
	v.transmit(func() { v.sendAllOptions() })
}

func (v *View2D) sendData(changed []layers.Layer) {
	data := cloneByteMap(v.layersData)
	for _, layer := range changed {
		alias, ok := v.AliasOf(layer)
		if !ok {
			continue
		}
		payload, err := v.encodeLayer(layer)
		if err != nil {
			v.logger.Error("encode layer", "alias", alias, "kind", layer.Kind(), "err", err)
			continue
		}
		data[alias] = payload
	}
	v.layersData = data
	v.sink.SetLayersData(data)
}

func (v *View2D) encodeLayer(layer layers.Layer) ([]byte, error) {
	fingerprint := []byte(layer.ID())
	fingerprint = append(fingerprint, byte(layer.Revision()>>56), byte(layer.Revision()>>48),
		byte(layer.Revision()>>40), byte(layer.Revision()>>32), byte(layer.Revision()>>24),
		byte(layer.Revision()>>16), byte(layer.Revision()>>8), byte(layer.Revision()))
	data, err := v.enc.Encode(context.Background(), layer.Kind(), fingerprint, func() (encoding.LayerData, error) {
		return layer.GetData(v.maxH, v.maxW)
	})
	if err != nil {
		return nil, err
	}
	return data.JSONBytes()
}

func (v *View2D) sendAllOptions() {
	options := make(map[string][]byte, v.Len())
	for _, layer := range v.Layers() {
		alias, ok := v.AliasOf(layer)
		if !ok {
			continue
		}
		raw, err := json.Marshal(layer.Options().Encoded())
		if err != nil {
			v.logger.Error("serialize layer options", "alias", alias, "err", err)
			continue
		}
		options[alias] = raw
	}
	v.sink.SetLayersOptions(options)
	if main := v.MainLayer(); main != nil {
		v.sink.SetDomain(main.Domain())
	}
}

// transmit flags the sink as loading around nested state pushes.
func (v *View2D) transmit(fn func()) {
	v.transmitDepth++
	if v.transmitDepth == 1 {
		v.sink.SetLoading(true)
	}
	defer func() {
		v.transmitDepth--
		if v.transmitDepth == 0 {
			v.sink.SetLoading(false)
		}
	}()
	fn()
}

func cloneByteMap(m map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- specialized layer constructors ---

// AddImage creates and adds an image layer. alias "" auto-generates one.
func (v *View2D) AddImage(img *raster.Image, alias string, opts layers.Options) (*layers.ImageLayer, error) {
	layer, err := layers.NewImage(img)
	if err != nil {
		return nil, err
	}
	if err := v.addWithOptions(layer, alias, opts); err != nil {
		return nil, err
	}
	return layer, nil
}

// AddLabel creates and adds a label layer.
func (v *View2D) AddLabel(lm *raster.LabelMap, alias string, colormap any, opts layers.Options) (*layers.LabelLayer, error) {
	layer, err := layers.NewLabel(lm, colormap)
	if err != nil {
		return nil, err
	}
	if err := v.addWithOptions(layer, alias, opts); err != nil {
		return nil, err
	}
	return layer, nil
}

// AddIntensity creates and adds an intensity layer.
func (v *View2D) AddIntensity(p *raster.Plane, alias string, colorRange any, opts layers.Options) (*layers.IntensityLayer, error) {
	layer, err := layers.NewIntensity(p, colorRange)
	if err != nil {
		return nil, err
	}
	if err := v.addWithOptions(layer, alias, opts); err != nil {
		return nil, err
	}
	return layer, nil
}

// AddGraph creates and adds a graph layer.
func (v *View2D) AddGraph(data layers.GraphData, alias string, opts layers.Options) (*layers.GraphLayer, error) {
	layer, err := layers.NewGraph(data)
	if err != nil {
		return nil, err
	}
	if err := v.addWithOptions(layer, alias, opts); err != nil {
		return nil, err
	}
	return layer, nil
}

// AddQuiver creates and adds a quiver layer.
func (v *View2D) AddQuiver(xy, uv [][2]float64, domain geom.Rect, alias string, opts layers.Options) (*layers.QuiverLayer, error) {
	layer, err := layers.NewQuiver(xy, uv, domain)
	if err != nil {
		return nil, err
	}
	if err := v.addWithOptions(layer, alias, opts); err != nil {
		return nil, err
	}
	return layer, nil
}

func (v *View2D) addWithOptions(layer layers.Layer, alias string, opts layers.Options) error {
	if err := v.Add(layer, alias, nil); err != nil {
		return err
	}
	if opts != nil {
		return layer.SetOptions(opts, true)
	}
	return nil
}

// --- events and viewport control ---

// OnClick subscribes to pointer clicks delivered by the front-end.
func (v *View2D) OnClick(fn func(events.ClickEvent)) events.Unbind {
	return v.onClick.Subscribe(fn)
}

// NextClick waits for the next click.
func (v *View2D) NextClick(ctx context.Context) <-chan events.ClickEvent {
	return v.onClick.Next(ctx)
}

// DispatchEvent delivers an inbound {name, data} event from the transport.
func (v *View2D) DispatchEvent(name string, data map[string]any) error {
	switch name {
	case "onclick":
		ev, err := parseClickEvent(data)
		if err != nil {
			return err
		}
		v.onClick.Dispatch(ev)
		return nil
	}
	return errors.New(errors.ErrCodeInvalidEvent, "unknown event %q", name)
}

func parseClickEvent(data map[string]any) (events.ClickEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return events.ClickEvent{}, errors.Wrap(errors.ErrCodeInvalidEvent, err, "invalid click event")
	}
	var ev events.ClickEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return events.ClickEvent{}, errors.Wrap(errors.ErrCodeInvalidEvent, err, "invalid click event %v", data)
	}
	return ev, nil
}

// GoTo pushes a target viewport transform centered on pos. A scale of 0
// keeps the current zoom.
func (v *View2D) GoTo(pos geom.Point, scale float64) {
	if scale <= 0 {
		scale = v.transform[2]
	}
	v.sink.SetTransform(pos.Y, pos.X, scale)
}

// SetTransform records the viewport transform reported by the front-end.
func (v *View2D) SetTransform(y, x, scale float64) {
	v.transform = [3]float64{y, x, scale}
}

// Transform returns the last reported viewport transform (y, x, scale).
func (v *View2D) Transform() (float64, float64, float64) {
	return v.transform[0], v.transform[1], v.transform[2]
}

// SyncGroup returns the shared transform group id, empty when unlinked.
func (v *View2D) SyncGroup() string { return v.syncGroup }

// LayersData returns the current alias-keyed encoded payloads.
func (v *View2D) LayersData() map[string][]byte {
	return cloneByteMap(v.layersData)
}

// SyncViews links the viewport transforms of several views under one
// fresh group id, which is returned.
func SyncViews(views ...*View2D) string {
	group := uuid.NewString()
	for _, v := range views {
		v.syncGroup = group
		v.sink.SetSyncGroup(group)
	}
	return group
}
