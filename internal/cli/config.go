package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/layerview/layerview/pkg/cache"
	"github.com/layerview/layerview/pkg/encoding"
	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/geom"
	"github.com/layerview/layerview/pkg/layers"
	"github.com/layerview/layerview/pkg/raster"
	"github.com/layerview/layerview/pkg/snapshot"
	"github.com/layerview/layerview/pkg/view"
)

// Config is the TOML configuration of a view: buffer limits, cache and
// snapshot backends, and the layer stack to build.
type Config struct {
	View      ViewConfig     `toml:"view"`
	Cache     CacheConfig    `toml:"cache"`
	Snapshots SnapshotConfig `toml:"snapshots"`
	Layers    []LayerConfig  `toml:"layer"`
}

// ViewConfig caps the encoded buffer sizes pushed to the front-end.
type ViewConfig struct {
	BufferMaxHeight int `toml:"buffer_max_height"`
	BufferMaxWidth  int `toml:"buffer_max_width"`
}

// CacheConfig selects the payload cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"` // "file" (default), "redis", "none"
	Dir     string `toml:"dir"`
	URL     string `toml:"url"`
	TTL     string `toml:"ttl"`
}

// SnapshotConfig selects the snapshot store backend.
type SnapshotConfig struct {
	Backend    string `toml:"backend"` // "file" (default), "mongo"
	Dir        string `toml:"dir"`
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// LayerConfig describes one layer of the stack.
//
// Sources by kind:
//   - image: an image file or http(s) URL
//   - label, intensity: an image file whose first channel carries the values
//   - graph: a JSON file {"adj": [[a,b],...], "nodes_yx": [[y,x],...]},
//     plus an optional edge map image under edge_map
//   - quiver: a JSON file {"xy": [[x,y],...], "uv": [[u,v],...],
//     "domain": [h,w,y,x]}
type LayerConfig struct {
	Kind    string         `toml:"kind"`
	Alias   string         `toml:"alias"`
	Source  string         `toml:"source"`
	EdgeMap string         `toml:"edge_map"`
	Domain  []float64      `toml:"domain"`
	VMin    *float64       `toml:"vmin"`
	VMax    *float64       `toml:"vmax"`
	Options map[string]any `toml:"options"`
}

// LoadConfig parses a TOML config file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %q", path)
	}
	for i, lc := range cfg.Layers {
		if lc.Kind == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "layer %d: missing kind", i)
		}
		if lc.Source == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "layer %d (%s): missing source", i, lc.Kind)
		}
	}
	return &cfg, nil
}

// defaultCacheDir returns the per-user payload cache directory.
func defaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "layerview"), nil
}

// openCache builds the configured cache backend.
func (c *Config) openCache(ctx context.Context) (cache.Cache, time.Duration, error) {
	ttl := time.Duration(0)
	if c.Cache.TTL != "" {
		d, err := time.ParseDuration(c.Cache.TTL)
		if err != nil {
			return nil, 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid cache ttl %q", c.Cache.TTL)
		}
		ttl = d
	}
	switch c.Cache.Backend {
	case "none":
		return cache.NewNullCache(), 0, nil
	case "redis":
		rc, err := cache.NewRedisCache(ctx, c.Cache.URL)
		if err != nil {
			return nil, 0, err
		}
		return rc, ttl, nil
	case "", "file":
		dir := c.Cache.Dir
		if dir == "" {
			var err error
			dir, err = defaultCacheDir()
			if err != nil {
				return nil, 0, err
			}
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, 0, err
		}
		return fc, ttl, nil
	}
	return nil, 0, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
}

// openSnapshotStore builds the configured snapshot store.
func (c *Config) openSnapshotStore(ctx context.Context) (snapshot.Store, error) {
	switch c.Snapshots.Backend {
	case "mongo":
		db := c.Snapshots.Database
		if db == "" {
			db = "layerview"
		}
		coll := c.Snapshots.Collection
		if coll == "" {
			coll = "snapshots"
		}
		return snapshot.NewMongoStore(ctx, c.Snapshots.URI, db, coll)
	case "", "file":
		dir := c.Snapshots.Dir
		if dir == "" {
			dir = "snapshots"
		}
		return snapshot.NewFileStore(dir)
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown snapshot backend %q", c.Snapshots.Backend)
}

// buildView constructs the configured layer stack pushing state to sink.
func (c *Config) buildView(ctx context.Context, sink view.StateSink) (*view.View2D, error) {
	payloadCache, ttl, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	opts := []view.Option{
		view.WithCache(payloadCache, ttl),
		view.WithLogger(loggerFromContext(ctx)),
	}
	if c.View.BufferMaxHeight > 0 && c.View.BufferMaxWidth > 0 {
		opts = append(opts, view.WithBufferSize(c.View.BufferMaxHeight, c.View.BufferMaxWidth))
	}
	v := view.New(sink, opts...)

	for i, lc := range c.Layers {
		if err := addConfiguredLayer(v, lc); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "layer %d (%s)", i, lc.Kind)
		}
	}
	return v, nil
}

func addConfiguredLayer(v *view.View2D, lc LayerConfig) error {
	opts := layers.Options(lc.Options)
	if len(lc.Domain) == 4 {
		if opts == nil {
			opts = layers.Options{}
		}
		opts["domain"] = lc.Domain
	}

	switch lc.Kind {
	case layers.KindImage:
		img, err := raster.LoadImage(lc.Source)
		if err != nil {
			return err
		}
		imgLayer, err := layers.NewImage(img)
		if err != nil {
			return err
		}
		if lc.VMin != nil || lc.VMax != nil {
			vmin, vmax := encoding.BoundAuto, encoding.BoundAuto
			if lc.VMin != nil {
				vmin = encoding.BoundValue(*lc.VMin)
			}
			if lc.VMax != nil {
				vmax = encoding.BoundValue(*lc.VMax)
			}
			imgLayer.SetValueRange(vmin, vmax)
		}
		if err := v.Add(imgLayer, lc.Alias, nil); err != nil {
			return err
		}
		return applyOptions(imgLayer, opts)

	case layers.KindLabel:
		plane, err := loadPlane(lc.Source)
		if err != nil {
			return err
		}
		lm, err := raster.LabelMapFromPlane(plane)
		if err != nil {
			return err
		}
		_, err = v.AddLabel(lm, lc.Alias, opts["cmap"], withoutKey(opts, "cmap"))
		return err

	case layers.KindIntensity:
		plane, err := loadPlane(lc.Source)
		if err != nil {
			return err
		}
		_, err = v.AddIntensity(plane, lc.Alias, opts["color_range"], withoutKey(opts, "color_range"))
		return err

	case layers.KindGraph:
		data, err := loadGraphData(lc)
		if err != nil {
			return err
		}
		_, err = v.AddGraph(data, lc.Alias, opts)
		return err

	case layers.KindQuiver:
		xy, uv, domain, err := loadQuiverData(lc.Source)
		if err != nil {
			return err
		}
		_, err = v.AddQuiver(xy, uv, domain, lc.Alias, opts)
		return err
	}
	return errors.New(errors.ErrCodeInvalidConfig, "unknown layer kind %q", lc.Kind)
}

func applyOptions(layer layers.Layer, opts layers.Options) error {
	if len(opts) == 0 {
		return nil
	}
	return layer.SetOptions(opts, true)
}

func withoutKey(opts layers.Options, key string) layers.Options {
	if opts == nil {
		return nil
	}
	out := opts.Clone()
	delete(out, key)
	return out
}

// loadPlane reads an image source and keeps its first channel as a scalar
// plane.
func loadPlane(source string) (*raster.Plane, error) {
	img, err := raster.LoadImage(source)
	if err != nil {
		return nil, err
	}
	data := make([]float64, img.H*img.W)
	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			data[y*img.W+x] = img.At(y, x, 0)
		}
	}
	return raster.NewPlane(img.H, img.W, data)
}

type graphFile struct {
	Adj     [][2]uint32  `json:"adj"`
	NodesYX [][2]float64 `json:"nodes_yx"`
}

func loadGraphData(lc LayerConfig) (layers.GraphData, error) {
	raw, err := os.ReadFile(lc.Source)
	if err != nil {
		return layers.GraphData{}, err
	}
	var gf graphFile
	if err := json.Unmarshal(raw, &gf); err != nil {
		return layers.GraphData{}, errors.Wrap(errors.ErrCodeInvalidData, err, "parse graph file %q", lc.Source)
	}
	data := layers.GraphData{Adjacency: gf.Adj, NodesYX: gf.NodesYX}
	if lc.EdgeMap != "" {
		plane, err := loadPlane(lc.EdgeMap)
		if err != nil {
			return layers.GraphData{}, err
		}
		lm, err := raster.LabelMapFromPlane(plane)
		if err != nil {
			return layers.GraphData{}, err
		}
		data.EdgeMap = lm
	}
	if len(lc.Domain) == 4 {
		data.NodesDomain = geom.Rect{H: lc.Domain[0], W: lc.Domain[1], Y: lc.Domain[2], X: lc.Domain[3]}
	}
	return data, nil
}

type quiverFile struct {
	XY     [][2]float64 `json:"xy"`
	UV     [][2]float64 `json:"uv"`
	Domain []float64    `json:"domain"`
}

func loadQuiverData(source string) ([][2]float64, [][2]float64, geom.Rect, error) {
	raw, err := os.ReadFile(source)
	if err != nil {
		return nil, nil, geom.Rect{}, err
	}
	var qf quiverFile
	if err := json.Unmarshal(raw, &qf); err != nil {
		return nil, nil, geom.Rect{}, errors.Wrap(errors.ErrCodeInvalidData, err, "parse quiver file %q", source)
	}
	var domain geom.Rect
	if len(qf.Domain) == 4 {
		domain = geom.Rect{H: qf.Domain[0], W: qf.Domain[1], Y: qf.Domain[2], X: qf.Domain[3]}
	}
	return qf.XY, qf.UV, domain, nil
}
