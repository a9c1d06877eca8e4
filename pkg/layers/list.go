package layers

import (
	"context"

	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/events"
	"github.com/layerview/layerview/pkg/geom"
	"github.com/layerview/layerview/pkg/observability"
)

// Sink receives the change notifications of a List. It is the sole
// interface towards the external transport binding: implementations
// serialize the affected layers to the rendering front-end.
type Sink interface {
	LayersAdded(layers []Layer)
	LayersRemoved(layers []Layer)
	LayersDataChanged(layers []Layer)
	LayersOptionsChanged(changes map[Layer]Options)
}

// NoopSink discards all notifications.
type NoopSink struct{}

func (NoopSink) LayersAdded([]Layer)                 {}
func (NoopSink) LayersRemoved([]Layer)               {}
func (NoopSink) LayersDataChanged([]Layer)           {}
func (NoopSink) LayersOptionsChanged(map[Layer]Options) {}

// Predicate selects layers by alias and value.
type Predicate func(alias string, layer Layer) bool

// Query filters and orders a layer selection.
type Query struct {
	// Selector is nil (all layers), an alias, a Layer, a Predicate, or a
	// slice of aliases/Layers.
	Selector any

	// OnlyVisible drops layers whose visible option is false.
	OnlyVisible bool

	// SortZIndex orders the result by ascending z_index.
	SortZIndex bool

	// Kinds keeps only the named layer kinds when non-empty.
	Kinds []string
}

// List owns an ordered collection of layers sharing one viewport
// coordinate space, anchored by the main layer's domain. All mutations are
// synchronous; notifications towards the sink are coalesced inside Update
// scopes.
type List struct {
	sink    Sink
	layers  map[string]Layer
	order   []string
	aliases map[string]string
	unbinds map[string][]events.Unbind
	mainID  string

	batchDepth     int
	pendingData    map[string]Layer
	pendingOptions map[string]Layer
}

// NewList creates an empty collection notifying the given sink.
// A nil sink discards notifications.
func NewList(sink Sink) *List {
	if sink == nil {
		sink = NoopSink{}
	}
	return &List{
		sink:           sink,
		layers:         map[string]Layer{},
		aliases:        map[string]string{},
		unbinds:        map[string][]events.Unbind{},
		pendingData:    map[string]Layer{},
		pendingOptions: map[string]Layer{},
	}
}

// Add inserts a layer on top of the stack and emits an added notification.
//
// An empty alias is replaced by a numbered kind-derived default. Adding
// under an alias already in use removes the previous holder first. A layer
// object already in the list is duplicated under a fresh identity. domain
// resolves the initial placement: explicit geom.Rect or geom.FitMode win
// over the layer's own mode, which falls back to geom.FitWidth. The first
// layer added becomes the main layer and its domain is forced to its
// native shape unless an explicit rect was given.
func (l *List) Add(layer Layer, alias string, domain any) error {
	if layer == nil {
		return errors.New(errors.ErrCodeInvalidData, "cannot add a nil layer")
	}

	makeMain := false
	if alias == "" {
		for i := 1; i <= len(l.layers)+1; i++ {
			candidate := defaultLabel(layer.Kind(), i)
			if _, taken := l.aliases[candidate]; !taken {
				alias = candidate
				break
			}
		}
	} else {
		if err := errors.ValidateAlias(alias); err != nil {
			return err
		}
		if id, taken := l.aliases[alias]; taken {
			makeMain = id == l.mainID
			if err := l.Remove(alias); err != nil {
				return err
			}
		}
	}

	if _, present := l.layers[layer.ID()]; present {
		layer = layer.Duplicate()
	}

	if lbl, _ := layer.Option("label").(string); lbl == "" {
		if err := layer.SetOptions(Options{"label": alias}, true); err != nil {
			return err
		}
	}
	if z, _ := toFloat(layer.Option("z_index")); z == -1 {
		maxZ := 0.0
		for _, other := range l.layers {
			if oz, _ := toFloat(other.Option("z_index")); oz > maxZ {
				maxZ = oz
			}
		}
		if err := layer.SetOptions(Options{"z_index": maxZ + 1}, true); err != nil {
			return err
		}
	}

	if domain == nil {
		switch mode := layer.DomainMode(); {
		case mode == ModeManual:
			domain = layer.Domain()
		default:
			if fm, ok := mode.FitMode(); ok {
				domain = fm
			}
		}
	}

	if l.mainID == "" {
		rect, ok := domain.(geom.Rect)
		if !ok || rect.IsEmpty() {
			rect = layer.Shape()
		}
		if err := layer.SetDomain(rect); err != nil {
			return err
		}
		makeMain = true
	} else {
		via := domain
		if via == nil {
			via = geom.FitWidth
		}
		if err := layer.SetMainShape(l.layers[l.mainID].Domain(), via); err != nil {
			return err
		}
	}

	l.layers[layer.ID()] = layer
	l.order = append(l.order, layer.ID())
	l.aliases[alias] = layer.ID()
	l.bindLayer(layer)

	// Promote before emitting so observers of the addition already see
	// the final main layer.
	if makeMain {
		if err := l.SetMainLayer(layer); err != nil {
			return err
		}
	}

	l.sink.LayersAdded([]Layer{layer})
	observability.Layer().OnLayersAdded(context.Background(), 1)
	return nil
}

// Remove drops a layer by alias, index or reference. When the main layer
// is removed, another remaining layer is promoted first so observers never
// see a non-empty list without a main layer.
func (l *List) Remove(ref any) error {
	layer, err := l.Layer(ref)
	if err != nil {
		return err
	}

	if layer.ID() == l.mainID {
		var next Layer
		for _, id := range l.order {
			if id != layer.ID() {
				next = l.layers[id]
				break
			}
		}
		if next != nil {
			if err := l.SetMainLayer(next); err != nil {
				return err
			}
		} else {
			l.mainID = ""
		}
	}

	for _, unbind := range l.unbinds[layer.ID()] {
		unbind()
	}
	delete(l.unbinds, layer.ID())
	delete(l.layers, layer.ID())
	for alias, id := range l.aliases {
		if id == layer.ID() {
			delete(l.aliases, alias)
			break
		}
	}
	for i, id := range l.order {
		if id == layer.ID() {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}

	// Emit after the maps are clean so observers resyncing on the removal
	// no longer see the departed layer.
	l.sink.LayersRemoved([]Layer{layer})
	observability.Layer().OnLayersRemoved(context.Background(), 1)
	return nil
}

// MainLayer returns the layer anchoring the shared coordinate space,
// nil when the list is empty.
func (l *List) MainLayer() Layer {
	if l.mainID == "" {
		return nil
	}
	return l.layers[l.mainID]
}

// SetMainLayer promotes a layer to main. Every other layer is carried
// along the affine transform from the previous main domain to the new one,
// inside one batched scope.
func (l *List) SetMainLayer(ref any) error {
	if ref == nil {
		l.mainID = ""
		return nil
	}
	layer, err := l.Layer(ref)
	if err != nil {
		return err
	}

	var via any
	if l.mainID != "" {
		t, err := geom.TransformFromRects(l.layers[l.mainID].Domain(), layer.Domain())
		if err != nil {
			return err
		}
		via = t
	}
	l.mainID = layer.ID()
	return l.propagateMainDomain(via)
}

// propagateMainDomain re-anchors every non-main layer on the current main
// domain, coalescing the resulting notifications.
func (l *List) propagateMainDomain(via any) error {
	main := l.layers[l.mainID]
	if main == nil {
		return nil
	}
	return l.Update(func() error {
		domain := main.Domain()
		for _, id := range l.order {
			if id == l.mainID {
				continue
			}
			if err := l.layers[id].SetMainShape(domain, via); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update runs fn inside a reentrant batching scope: data and options
// notifications fired by layer mutations inside the scope accumulate into
// per-kind sets and are emitted once when the outermost scope exits, data
// first. A failed mutation does not discard the notifications of the
// mutations already applied in the same scope.
func (l *List) Update(fn func() error) error {
	l.batchDepth++
	err := fn()
	l.batchDepth--
	if l.batchDepth == 0 {
		l.flush()
	}
	return err
}

// UpdateOptions applies per-layer option mappings in one batched scope.
// Keys may be aliases or Layer references. When the main layer's domain
// changes, the new anchoring is propagated to all other layers within the
// same scope.
func (l *List) UpdateOptions(changes map[any]Options, strict bool) error {
	return l.Update(func() error {
		mainDomainChanged := false
		for ref, opts := range changes {
			layer, err := l.Layer(ref)
			if err != nil {
				return err
			}
			if err := layer.SetOptions(opts, strict); err != nil {
				return err
			}
			if layer.ID() == l.mainID {
				if _, ok := opts["domain"]; ok {
					mainDomainChanged = true
				}
			}
		}
		if mainDomainChanged {
			return l.propagateMainDomain(nil)
		}
		return nil
	})
}

// UpdateAllOptions applies one option mapping to all selected layers in
// one batched scope.
func (l *List) UpdateAllOptions(opts Options, q Query, strict bool) error {
	layers, err := l.Select(q)
	if err != nil {
		return err
	}
	return l.Update(func() error {
		for _, layer := range layers {
			if err := layer.SetOptions(opts, strict); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateData replaces per-layer buffers in one batched scope. Keys may be
// aliases or Layer references.
func (l *List) UpdateData(updates map[any]any) error {
	return l.Update(func() error {
		for ref, data := range updates {
			layer, err := l.Layer(ref)
			if err != nil {
				return err
			}
			if err := layer.UpdateData(data); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateAllData feeds the same buffer to all selected layers in one
// batched scope.
func (l *List) UpdateAllData(data any, q Query) error {
	layers, err := l.Select(q)
	if err != nil {
		return err
	}
	return l.Update(func() error {
		for _, layer := range layers {
			if err := layer.UpdateData(data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Layer resolves an alias, a zero-based insertion index or a Layer
// reference to a member of the list.
func (l *List) Layer(ref any) (Layer, error) {
	switch r := ref.(type) {
	case string:
		id, ok := l.aliases[r]
		if !ok {
			return nil, errors.New(errors.ErrCodeAliasNotFound, "no layer named %q", r)
		}
		return l.layers[id], nil
	case int:
		if r < 0 || r >= len(l.order) {
			return nil, errors.New(errors.ErrCodeIndexRange, "layer index %d out of range [0, %d)", r, len(l.order))
		}
		return l.layers[l.order[r]], nil
	case Layer:
		if _, ok := l.layers[r.ID()]; !ok {
			return nil, errors.New(errors.ErrCodeLayerNotFound, "layer %q is not part of the list", r.ID())
		}
		return r, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidData, "invalid layer reference %T", ref)
}

// Select resolves a Query against the collection, preserving insertion
// order unless SortZIndex is set.
func (l *List) Select(q Query) ([]Layer, error) {
	var selected []Layer
	switch sel := q.Selector.(type) {
	case nil:
		for _, id := range l.order {
			selected = append(selected, l.layers[id])
		}
	case Predicate:
		for _, id := range l.order {
			layer := l.layers[id]
			if sel(l.aliasOf(id), layer) {
				selected = append(selected, layer)
			}
		}
	case string, Layer:
		layer, err := l.Layer(sel)
		if err != nil {
			return nil, err
		}
		selected = []Layer{layer}
	case []any:
		for _, ref := range sel {
			layer, err := l.Layer(ref)
			if err != nil {
				return nil, err
			}
			selected = append(selected, layer)
		}
	case []string:
		for _, ref := range sel {
			layer, err := l.Layer(ref)
			if err != nil {
				return nil, err
			}
			selected = append(selected, layer)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidData, "invalid layer selector %T", q.Selector)
	}

	if q.OnlyVisible {
		kept := selected[:0]
		for _, layer := range selected {
			if visible, _ := layer.Option("visible").(bool); visible {
				kept = append(kept, layer)
			}
		}
		selected = kept
	}
	if len(q.Kinds) > 0 {
		kept := selected[:0]
		for _, layer := range selected {
			for _, kind := range q.Kinds {
				if layer.Kind() == kind {
					kept = append(kept, layer)
					break
				}
			}
		}
		selected = kept
	}
	if q.SortZIndex {
		sortByZIndex(selected)
	}
	return selected, nil
}

func sortByZIndex(layers []Layer) {
	// Insertion-order stability matters for equal z-indexes.
	for i := 1; i < len(layers); i++ {
		for j := i; j > 0; j-- {
			zj, _ := toFloat(layers[j].Option("z_index"))
			zp, _ := toFloat(layers[j-1].Option("z_index"))
			if zj >= zp {
				break
			}
			layers[j], layers[j-1] = layers[j-1], layers[j]
		}
	}
}

// AliasOf returns the alias of a member layer.
func (l *List) AliasOf(layer Layer) (string, bool) {
	if layer == nil {
		return "", false
	}
	alias := l.aliasOf(layer.ID())
	return alias, alias != ""
}

func (l *List) aliasOf(id string) string {
	for alias, lid := range l.aliases {
		if lid == id {
			return alias
		}
	}
	return ""
}

// AliasesOf maps layers to their aliases, preserving input order and
// leaving an empty string for non-members.
func (l *List) AliasesOf(layers []Layer) []string {
	out := make([]string, len(layers))
	for i, layer := range layers {
		out[i] = l.aliasOf(layer.ID())
	}
	return out
}

// Aliases returns all aliases in insertion order.
func (l *List) Aliases() []string {
	out := make([]string, 0, len(l.aliases))
	for _, id := range l.order {
		if alias := l.aliasOf(id); alias != "" {
			out = append(out, alias)
		}
	}
	return out
}

// Layers returns the members in insertion order.
func (l *List) Layers() []Layer {
	out := make([]Layer, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.layers[id])
	}
	return out
}

// Len reports the number of layers.
func (l *List) Len() int { return len(l.layers) }

// Contains reports membership by alias or reference.
func (l *List) Contains(ref any) bool {
	switch r := ref.(type) {
	case string:
		_, ok := l.aliases[r]
		return ok
	case Layer:
		_, ok := l.layers[r.ID()]
		return ok
	}
	return false
}

// CombinedDomain is the union of all layer domains, falling back to a
// layer's native shape when its domain is still empty.
func (l *List) CombinedDomain() geom.Rect {
	var domain geom.Rect
	for _, id := range l.order {
		layer := l.layers[id]
		d := layer.Domain()
		if d.IsEmpty() {
			d = layer.Shape()
		}
		domain = domain.Union(d)
	}
	return domain
}

func (l *List) bindLayer(layer Layer) {
	l.unbinds[layer.ID()] = []events.Unbind{
		layer.OnDataChange(l.layerDataChanged),
		layer.OnOptionsChange(l.layerOptionsChanged),
	}
}

func (l *List) layerDataChanged(layer Layer) {
	if l.batchDepth > 0 {
		l.pendingData[layer.ID()] = layer
		return
	}
	l.sink.LayersDataChanged([]Layer{layer})
	observability.Layer().OnDataBatch(context.Background(), 1)
}

func (l *List) layerOptionsChanged(layer Layer, changed Options) {
	if l.batchDepth > 0 {
		l.pendingOptions[layer.ID()] = layer
		return
	}
	l.sink.LayersOptionsChanged(map[Layer]Options{layer: changed})
	observability.Layer().OnOptionsBatch(context.Background(), 1)
}

// flush emits the accumulated batches, data before options. Option batches
// carry each layer's full option mapping since per-key deltas were
// coalesced away.
func (l *List) flush() {
	if len(l.pendingData) > 0 {
		batch := make([]Layer, 0, len(l.pendingData))
		for _, id := range l.order {
			if layer, ok := l.pendingData[id]; ok {
				batch = append(batch, layer)
				delete(l.pendingData, id)
			}
		}
		// Layers removed before the flush are still reported.
		for _, layer := range l.pendingData {
			batch = append(batch, layer)
		}
		l.pendingData = map[string]Layer{}
		l.sink.LayersDataChanged(batch)
		observability.Layer().OnDataBatch(context.Background(), len(batch))
	}
	if len(l.pendingOptions) > 0 {
		changes := make(map[Layer]Options, len(l.pendingOptions))
		for _, layer := range l.pendingOptions {
			changes[layer] = layer.Options()
		}
		l.pendingOptions = map[string]Layer{}
		l.sink.LayersOptionsChanged(changes)
		observability.Layer().OnOptionsBatch(context.Background(), len(changes))
	}
}
