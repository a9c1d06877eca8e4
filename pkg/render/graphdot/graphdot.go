// Package graphdot renders graph layers as standalone node-link diagrams
// via Graphviz. Node positions are pinned to the layer's domain
// coordinates, so the rendered diagram matches the overlay the front-end
// draws.
package graphdot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/layerview/layerview/pkg/layers"
)

// Options configures graph layer rendering.
type Options struct {
	// NodeColor and EdgeColor override the default fill/stroke colors.
	NodeColor string
	EdgeColor string

	// Labels adds node indexes as labels. When false, nodes render as
	// plain dots.
	Labels bool

	// Scale maps domain units to Graphviz points. Defaults to 1.
	Scale float64
}

// ToDOT converts a graph layer to DOT with pinned node positions. The
// neato layout engine honors the pins, so the topology is drawn exactly
// where the nodes sit in domain space (y flipped, since DOT grows upward).
func ToDOT(g *layers.GraphLayer, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	nodeColor := opts.NodeColor
	if nodeColor == "" {
		nodeColor = "black"
	}
	edgeColor := opts.EdgeColor
	if edgeColor == "" {
		edgeColor = "grey"
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=point, width=0.1, color=%q];\n", nodeColor)
	fmt.Fprintf(&buf, "  edge [color=%q];\n", edgeColor)
	buf.WriteString("\n")

	domain := g.NodesDomain()
	for i, yx := range g.NodesYX() {
		x := (yx[1] - domain.X) * scale
		y := (domain.H - (yx[0] - domain.Y)) * scale
		attrs := fmt.Sprintf("pos=\"%.2f,%.2f!\"", x, y)
		if opts.Labels {
			attrs += fmt.Sprintf(", shape=circle, label=%q", fmt.Sprint(i))
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, attrs)
	}

	buf.WriteString("\n")
	for _, e := range g.Adjacency() {
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
