package encoding

import (
	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/geom"
	"github.com/layerview/layerview/pkg/raster"
)

// ValidateGraph checks the cross-references between an adjacency list, node
// coordinates and an optional edge map:
//
//   - every adjacency entry must index an existing node
//   - when an edge map is present, its maximum label must equal the number
//     of edges (labels 1..E index edges, 0 is background)
func ValidateGraph(adj [][2]uint32, nodesYX [][2]float64, edgeMap *raster.LabelMap) error {
	var maxNode uint32
	for _, e := range adj {
		if e[0] > maxNode {
			maxNode = e[0]
		}
		if e[1] > maxNode {
			maxNode = e[1]
		}
	}
	if len(adj) > 0 && int(maxNode) >= len(nodesYX) {
		return errors.New(errors.ErrCodeInvalidData,
			"adjacency list references node %d but only %d node coordinates were given",
			maxNode, len(nodesYX))
	}
	if edgeMap != nil {
		if maxLabel := edgeMap.Max(); int(maxLabel) != len(adj) {
			return errors.New(errors.ErrCodeInvalidData,
				"edge map labels up to %d but adjacency list contains %d edges", maxLabel, len(adj))
		}
	}
	return nil
}

// EncodeGraph serializes a graph as nested numeric lists: adjacency pairs
// under "adj", node (y, x) coordinates under "nodes_yx" and, when present,
// the edge map packed as a png data URI under "edgeMap". The infos carry
// the node count and the domain rectangle the coordinates live in.
func EncodeGraph(adj [][2]uint32, nodesYX [][2]float64, edgeMap *raster.LabelMap, nodesDomain geom.Rect) (LayerData, error) {
	if err := ValidateGraph(adj, nodesYX, edgeMap); err != nil {
		return LayerData{}, err
	}

	adjList := make([][]int, len(adj))
	var maxNode int
	for i, e := range adj {
		adjList[i] = []int{int(e[0]), int(e[1])}
		if int(e[0]) > maxNode {
			maxNode = int(e[0])
		}
		if int(e[1]) > maxNode {
			maxNode = int(e[1])
		}
	}
	nodes := make([][]float64, len(nodesYX))
	for i, p := range nodesYX {
		nodes[i] = []float64{p[0], p[1]}
	}

	data := map[string]any{"adj": adjList, "nodes_yx": nodes}
	if edgeMap != nil {
		uri, err := packedPNGURI(edgeMap, 0, 0)
		if err != nil {
			return LayerData{}, err
		}
		data["edgeMap"] = uri
	}

	nbNodes := 0
	if len(adj) > 0 {
		nbNodes = maxNode + 1
	}
	return LayerData{
		Data: data,
		Infos: map[string]any{
			"nbNodes":     nbNodes,
			"nodesDomain": rectList(nodesDomain),
		},
	}, nil
}
