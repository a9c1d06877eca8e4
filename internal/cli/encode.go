package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/view"
)

// newEncodeCmd creates the encode command, which builds the configured layer
// stack and writes each layer's front-end payload and options to disk.
func newEncodeCmd() *cobra.Command {
	var (
		configPath string
		outDir     string
		alias      string
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode configured layers into front-end payloads",
		Long: `Encode builds the layer stack described by a TOML config file and writes
one JSON payload file and one JSON options file per layer into the output
directory. Payloads embed raster data as data URIs, so the files can be
served to a front-end as-is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}

			spin := newSpinnerWithContext(ctx, "Encoding layers...")
			spin.Start()
			v, err := cfg.buildView(ctx, view.NoopStateSink{})
			if err != nil {
				spin.StopWithError(fmt.Sprintf("Failed to build layer stack: %v", err))
				return err
			}
			payloads := v.LayersData()
			spin.Stop()
			if spin.Cancelled() {
				return ctx.Err()
			}

			if alias != "" {
				payload, ok := payloads[alias]
				if !ok {
					return errors.New(errors.ErrCodeAliasNotFound, "no layer %q in config", alias)
				}
				payloads = map[string][]byte{alias: payload}
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			aliases := make([]string, 0, len(payloads))
			for a := range payloads {
				aliases = append(aliases, a)
			}
			sort.Strings(aliases)

			var total int
			for _, a := range aliases {
				payloadPath := filepath.Join(outDir, a+".json")
				if err := os.WriteFile(payloadPath, payloads[a], 0o644); err != nil {
					return err
				}
				total += len(payloads[a])
				printFile(payloadPath)

				layer, err := v.Layer(a)
				if err != nil {
					return err
				}
				opts, err := json.Marshal(layer.Options().Encoded())
				if err != nil {
					return err
				}
				optionsPath := filepath.Join(outDir, a+".options.json")
				if err := os.WriteFile(optionsPath, opts, 0o644); err != nil {
					return err
				}
				printFile(optionsPath)
			}

			printSuccess("Encoded %d layer(s)", len(aliases))
			printDetail("%d bytes of payload data", total)
			prog.done(fmt.Sprintf("Encoded %d layer(s)", len(aliases)))
			printNextStep("Serve the stack", fmt.Sprintf("layerview serve --config %s", configPath))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "layerview.toml", "path to the TOML config file")
	cmd.Flags().StringVarP(&outDir, "out", "o", "payloads", "output directory for payload files")
	cmd.Flags().StringVar(&alias, "alias", "", "encode only the layer with this alias")

	return cmd
}
