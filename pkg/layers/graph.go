package layers

import (
	"github.com/layerview/layerview/pkg/encoding"
	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/geom"
	"github.com/layerview/layerview/pkg/raster"
)

// GraphData bundles the buffers of a graph layer: edge endpoints as node
// index pairs, node (y, x) coordinates, and an optional edge map raster
// whose labels 1..E index edges (0 is background).
type GraphData struct {
	Adjacency   [][2]uint32
	NodesYX     [][2]float64
	EdgeMap     *raster.LabelMap
	NodesDomain geom.Rect
}

// GraphLayer renders a node-link diagram pinned to domain coordinates.
type GraphLayer struct {
	*base
	adj         [][2]uint32
	nodesYX     [][2]float64
	edgeMap     *raster.LabelMap
	nodesDomain geom.Rect
}

// NewGraph creates a graph layer. An empty NodesDomain falls back to the
// edge map's bounding rect when one is present, otherwise to the shared
// main domain once the layer joins a list.
func NewGraph(data GraphData) (*GraphLayer, error) {
	l := &GraphLayer{
		base: newBase(KindGraph, map[string]Validator{
			"nodes_cmap":          validateLabelColormap(false),
			"edges_cmap":          validateLabelColormap(false),
			"edges_opacity":       validateClamped01("edges_opacity"),
			"node_labels_visible": validateBool("node_labels_visible"),
			"edge_labels_visible": validateBool("edge_labels_visible"),
			"edge_map_visible":    validateBool("edge_map_visible"),
		}),
	}
	l.bind(l)
	l.opts["foreground"] = true
	l.opts["edges_opacity"] = 0.7
	l.opts["node_labels_visible"] = false
	l.opts["edge_labels_visible"] = false
	l.opts["edge_map_visible"] = data.EdgeMap == nil
	if err := l.SetGraph(data); err != nil {
		return nil, err
	}
	return l, nil
}

// validateClamped01 clamps a numeric option into [0, 1] instead of
// rejecting out-of-range values.
func validateClamped01(key string) Validator {
	return func(v any) (any, error) {
		f, err := toFloat(v)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidOption, "%s must be a number, got %v", key, v)
		}
		if f < 0 {
			f = 0
		} else if f > 1 {
			f = 1
		}
		return f, nil
	}
}

// SetGraph replaces all graph buffers at once, validating their
// cross-references, and fires a single data change.
func (l *GraphLayer) SetGraph(data GraphData) error {
	if err := encoding.ValidateGraph(data.Adjacency, data.NodesYX, data.EdgeMap); err != nil {
		return err
	}
	domain := data.NodesDomain
	if domain.IsEmpty() && data.EdgeMap != nil {
		domain = geom.FromSize(float64(data.EdgeMap.H), float64(data.EdgeMap.W))
	}
	l.adj = data.Adjacency
	l.nodesYX = data.NodesYX
	l.edgeMap = data.EdgeMap
	l.nodesDomain = domain
	l.notifyDataChange()
	return nil
}

// Adjacency returns the edge list.
func (l *GraphLayer) Adjacency() [][2]uint32 { return l.adj }

// NodesYX returns the node coordinates.
func (l *GraphLayer) NodesYX() [][2]float64 { return l.nodesYX }

// EdgeMap returns the edge raster, nil when absent.
func (l *GraphLayer) EdgeMap() *raster.LabelMap { return l.edgeMap }

// NodesDomain returns the rect the node coordinates live in.
func (l *GraphLayer) NodesDomain() geom.Rect { return l.nodesDomain }

// SetMainShape additionally adopts the main domain as nodes domain when
// none was ever resolved.
func (l *GraphLayer) SetMainShape(main geom.Rect, via any) error {
	if l.nodesDomain.IsEmpty() {
		l.nodesDomain = main
	}
	return l.base.SetMainShape(main, via)
}

func (l *GraphLayer) Shape() geom.Rect {
	if l.edgeMap != nil {
		return geom.FromSize(float64(l.edgeMap.H), float64(l.edgeMap.W))
	}
	return l.nodesDomain
}

func (l *GraphLayer) GetData(maxH, maxW int) (encoding.LayerData, error) {
	return l.finishData(encoding.EncodeGraph(l.adj, l.nodesYX, l.edgeMap, l.nodesDomain))
}

// UpdateData replaces the graph buffers. Accepts GraphData or a bare
// adjacency list, which is revalidated against the current nodes.
func (l *GraphLayer) UpdateData(data any) error {
	switch d := data.(type) {
	case GraphData:
		return l.SetGraph(d)
	case [][2]uint32:
		return l.SetGraph(GraphData{
			Adjacency:   d,
			NodesYX:     l.nodesYX,
			EdgeMap:     l.edgeMap,
			NodesDomain: l.nodesDomain,
		})
	}
	return errors.New(errors.ErrCodeInvalidData, "invalid graph data %T", data)
}

func (l *GraphLayer) FetchItem(x, y int) (map[string]any, error) {
	if l.edgeMap == nil || y < 0 || x < 0 || y >= l.edgeMap.H || x >= l.edgeMap.W {
		return nil, errors.New(errors.ErrCodeIndexRange, "pixel (%d, %d) out of bounds", x, y)
	}
	return map[string]any{"value": l.edgeMap.At(y, x)}, nil
}

func (l *GraphLayer) Duplicate() Layer {
	dup := &GraphLayer{
		base:        l.duplicateBase(),
		adj:         l.adj,
		nodesYX:     l.nodesYX,
		edgeMap:     l.edgeMap,
		nodesDomain: l.nodesDomain,
	}
	dup.bind(dup)
	return dup
}
