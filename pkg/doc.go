// Package pkg provides the core libraries for Layerview interactive 2D
// visualization.
//
// # Overview
//
// Layerview stacks heterogeneous visualization layers (images, label maps,
// intensity fields, node-link graphs, vector fields) into one shared
// viewport coordinate space and serializes them for a rendering front-end.
// The pkg directory is organized into four main areas:
//
//  1. [layers] / [view] - Domain logic (the layer kinds, the collection
//     keeping them geometrically consistent, the front-end binding)
//  2. [geom] / [raster] / [colors] - Value types (rectangles, transforms,
//     float rasters, colormaps)
//  3. [encoding] / [cache] - Wire payloads (base64 data URIs, label
//     packing) and their content-addressed cache
//  4. [snapshot] / [render/graphdot] - Persistence and offline rendering
//
// # Architecture
//
// The typical data flow through Layerview:
//
//	Image file / URL / raster provider
//	         ↓
//	    [raster] package (validated float buffers)
//	         ↓
//	    [layers] package (options, domains, change batching)
//	         ↓
//	    [encoding] package (payload encoding, via [cache])
//	         ↓
//	    [view] package (StateSink: HTTP API, snapshot, front-end)
//
// # Quick Start
//
// Build a view, add two layers and react to clicks:
//
//	import (
//	    "context"
//	    "github.com/layerview/layerview/pkg/events"
//	    "github.com/layerview/layerview/pkg/raster"
//	    "github.com/layerview/layerview/pkg/view"
//	)
//
//	// 1. Load the background raster
//	img, _ := raster.LoadImage("fundus.png")
//
//	// 2. Bind a view to a transport sink
//	v := view.New(sink, view.WithBufferSize(1024, 1024))
//	v.AddImage(img, "fundus", nil)
//
//	// 3. Overlay a label map, fitted to the main domain
//	labels, _ := raster.LabelMapFromInts(h, w, ids)
//	v.AddLabel(labels, "vessels", nil, nil)
//
//	// 4. React to pointer events from the front-end
//	v.OnClick(func(e events.ClickEvent) {
//	    item, _ := v.MainLayer().FetchItem(int(e.X), int(e.Y))
//	    _ = item
//	})
//
// # Main Packages
//
// [layers] - The five layer kinds over one shared base: validated buffers,
// per-kind option validators, domain modes (manual, fit, unset) and the
// List collection that anchors every layer on the main domain and batches
// change notifications.
//
// [view] - View2D binds a List to a StateSink: payload re-encoding on
// change, viewport transforms, click fan-out and multi-view transform
// synchronization.
//
// [geom] - Immutable rectangles in (h, w, y, x) order, points, uniform
// affine transforms and the viewport fit modes.
//
// [raster] - Float64 planes, images and uint32 label maps with shape and
// channel validation, plus decoding from files and URLs.
//
// [colors] - Hex colors, label colormaps and interpolated color ranges.
//
// [encoding] - Encodes buffers into front-end payloads: normalized JPEG or
// PNG data URIs, bit-packed label and intensity PNGs, graph and quiver
// JSON. Cached wraps an encoder with content-addressed caching.
//
// [cache] - The payload cache backends: file, Redis and null.
//
// [snapshot] - Captures a whole collection (payloads, options, domain)
// and persists it to files or MongoDB.
//
// [render/graphdot] - Renders graph layers to DOT, SVG or PNG through
// Graphviz for offline inspection.
//
// [events] - Generic subscription dispatcher and the pointer event types.
//
// [errors] - Coded errors shared by every package.
//
// [layers]: github.com/layerview/layerview/pkg/layers
// [view]: github.com/layerview/layerview/pkg/view
// [geom]: github.com/layerview/layerview/pkg/geom
// [raster]: github.com/layerview/layerview/pkg/raster
// [colors]: github.com/layerview/layerview/pkg/colors
// [encoding]: github.com/layerview/layerview/pkg/encoding
// [cache]: github.com/layerview/layerview/pkg/cache
// [snapshot]: github.com/layerview/layerview/pkg/snapshot
// [render/graphdot]: github.com/layerview/layerview/pkg/render/graphdot
// [events]: github.com/layerview/layerview/pkg/events
// [errors]: github.com/layerview/layerview/pkg/errors
package pkg
