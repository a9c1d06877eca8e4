// Package snapshot captures and persists the full state of a layer
// collection: per-layer encoded payloads, options and the shared domain.
// Snapshots back the render and serve commands so a view can be restored
// or re-rendered without the source buffers.
package snapshot

import (
	"context"
	"time"

	"github.com/layerview/layerview/pkg/encoding"
	"github.com/layerview/layerview/pkg/geom"
	"github.com/layerview/layerview/pkg/layers"
)

// LayerState is the persisted state of one layer.
type LayerState struct {
	Alias   string             `json:"alias" bson:"alias"`
	Kind    string             `json:"kind" bson:"kind"`
	Options map[string]any     `json:"options" bson:"options"`
	Data    encoding.LayerData `json:"data" bson:"data"`
}

// Snapshot is the persisted state of a whole collection.
type Snapshot struct {
	ID        string       `json:"id" bson:"_id"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	MainAlias string       `json:"main_alias,omitempty" bson:"main_alias,omitempty"`
	Domain    []float64    `json:"domain" bson:"domain"`
	Layers    []LayerState `json:"layers" bson:"layers"`
}

// Meta is the listing view of a stored snapshot.
type Meta struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Layers    int       `json:"layers" bson:"layers"`
}

// Store persists snapshots. Implementations must be safe for concurrent
// use.
type Store interface {
	// Save stores or replaces a snapshot under its ID.
	Save(ctx context.Context, snap *Snapshot) error

	// Load retrieves a snapshot. A missing ID is a NOT_FOUND error.
	Load(ctx context.Context, id string) (*Snapshot, error)

	// Delete removes a snapshot. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// List enumerates stored snapshots, newest first.
	List(ctx context.Context) ([]Meta, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Capture encodes the current state of a collection into a snapshot.
// maxH/maxW cap the encoded buffer sizes, 0 disables resizing.
func Capture(id string, list *layers.List, maxH, maxW int) (*Snapshot, error) {
	snap := &Snapshot{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Domain:    rectList(list.CombinedDomain()),
	}
	if main := list.MainLayer(); main != nil {
		snap.MainAlias, _ = list.AliasOf(main)
	}
	zOrdered, err := list.Select(layers.Query{SortZIndex: true})
	if err != nil {
		return nil, err
	}
	for _, layer := range zOrdered {
		data, err := layer.GetData(maxH, maxW)
		if err != nil {
			return nil, err
		}
		alias, _ := list.AliasOf(layer)
		snap.Layers = append(snap.Layers, LayerState{
			Alias:   alias,
			Kind:    layer.Kind(),
			Options: layer.Options().Encoded(),
			Data:    data,
		})
	}
	return snap, nil
}

func rectList(r geom.Rect) []float64 {
	return []float64{r.H, r.W, r.Y, r.X}
}
