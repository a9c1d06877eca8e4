package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/layers"
	"github.com/layerview/layerview/pkg/render/graphdot"
	"github.com/layerview/layerview/pkg/view"
)

// newRenderCmd creates the render command, which rasterizes a graph layer
// into a standalone SVG, PNG or DOT file.
func newRenderCmd() *cobra.Command {
	var (
		configPath string
		alias      string
		outPath    string
		labels     bool
		nodeColor  string
		edgeColor  string
		scale      float64
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a graph layer as SVG, PNG, or DOT",
		Long: `Render picks a graph layer from the configured stack and draws its
node-link diagram with Graphviz, pinning every node to its domain position.
The output format follows the file extension (.svg, .png, or .dot).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}

			spin := newSpinnerWithContext(ctx, "Building layer stack...")
			spin.Start()
			v, err := cfg.buildView(ctx, view.NoopStateSink{})
			spin.Stop()
			if err != nil {
				printError("Failed to build layer stack: %v", err)
				return err
			}
			if spin.Cancelled() {
				return ctx.Err()
			}

			graph, graphAlias, err := pickGraphLayer(v, alias)
			if err != nil {
				return err
			}

			dot := graphdot.ToDOT(graph, graphdot.Options{
				NodeColor: nodeColor,
				EdgeColor: edgeColor,
				Labels:    labels,
				Scale:     scale,
			})

			var out []byte
			switch strings.ToLower(filepath.Ext(outPath)) {
			case ".dot", ".gv":
				out = []byte(dot)
			case ".svg":
				out, err = graphdot.RenderSVG(ctx, dot)
			case ".png":
				out, err = graphdot.RenderPNG(ctx, dot)
			default:
				return errors.New(errors.ErrCodeInvalidConfig,
					"unsupported output extension %q (want .svg, .png, .dot or .gv)", filepath.Ext(outPath))
			}
			if err != nil {
				return err
			}

			if err := os.WriteFile(outPath, out, 0o644); err != nil {
				return err
			}

			printSuccess("Rendered layer %q", graphAlias)
			printStats(len(graph.NodesYX()), len(graph.Adjacency()), false)
			printFile(outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "layerview.toml", "path to the TOML config file")
	cmd.Flags().StringVar(&alias, "alias", "", "graph layer alias (defaults to the only graph layer)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "graph.svg", "output file (.svg, .png, .dot)")
	cmd.Flags().BoolVar(&labels, "labels", false, "label nodes with their index")
	cmd.Flags().StringVar(&nodeColor, "node-color", "", "node color override")
	cmd.Flags().StringVar(&edgeColor, "edge-color", "", "edge color override")
	cmd.Flags().Float64Var(&scale, "scale", 1, "domain units per Graphviz point")

	return cmd
}

// pickGraphLayer resolves the graph layer to render. With an empty alias the
// stack must contain exactly one graph layer.
func pickGraphLayer(v *view.View2D, alias string) (*layers.GraphLayer, string, error) {
	if alias != "" {
		layer, err := v.Layer(alias)
		if err != nil {
			return nil, "", err
		}
		graph, ok := layer.(*layers.GraphLayer)
		if !ok {
			return nil, "", errors.New(errors.ErrCodeInvalidData,
				"layer %q is a %s layer, not a graph layer", alias, layer.Kind())
		}
		return graph, alias, nil
	}

	matches, err := v.Select(layers.Query{Kinds: []string{layers.KindGraph}})
	if err != nil {
		return nil, "", err
	}
	switch len(matches) {
	case 0:
		return nil, "", errors.New(errors.ErrCodeInvalidConfig, "config has no graph layer")
	case 1:
		graph := matches[0].(*layers.GraphLayer)
		a, _ := v.AliasOf(graph)
		return graph, a, nil
	}
	found := make([]string, 0, len(matches))
	for _, m := range matches {
		if a, ok := v.AliasOf(m); ok {
			found = append(found, fmt.Sprintf("%q", a))
		}
	}
	return nil, "", errors.New(errors.ErrCodeInvalidConfig,
		"config has %d graph layers (%s), pick one with --alias", len(matches), strings.Join(found, ", "))
}
