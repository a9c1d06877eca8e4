package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/layerview/layerview/pkg/snapshot"
	"github.com/layerview/layerview/pkg/view"
)

// newSnapshotCmd creates the snapshot command group for capturing, listing
// and deleting stored view snapshots.
func newSnapshotCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture, list, and delete stored view snapshots",
		Long: `Snapshot manages the configured snapshot store. A snapshot freezes the
full view state (encoded payloads, per-layer options, the main domain) under
an id, so it can be reloaded or served later without the source buffers.`,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "layerview.toml", "path to the TOML config file")

	cmd.AddCommand(newSnapshotSaveCmd(&configPath))
	cmd.AddCommand(newSnapshotListCmd(&configPath))
	cmd.AddCommand(newSnapshotDeleteCmd(&configPath))

	return cmd
}

func newSnapshotSaveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "save <id>",
		Short: "Build the configured stack and store it as a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			cfg, err := LoadConfig(*configPath)
			if err != nil {
				return err
			}

			spin := newSpinnerWithContext(ctx, "Capturing snapshot...")
			spin.Start()
			v, err := cfg.buildView(ctx, view.NoopStateSink{})
			if err != nil {
				spin.StopWithError(fmt.Sprintf("Failed to build layer stack: %v", err))
				return err
			}

			snap, err := snapshot.Capture(id, v.List, cfg.View.BufferMaxHeight, cfg.View.BufferMaxWidth)
			if err != nil {
				spin.StopWithError(fmt.Sprintf("Failed to capture snapshot: %v", err))
				return err
			}

			store, err := cfg.openSnapshotStore(ctx)
			if err != nil {
				spin.Stop()
				return err
			}
			defer store.Close(context.Background())

			if err := store.Save(ctx, snap); err != nil {
				spin.StopWithError(fmt.Sprintf("Failed to store snapshot: %v", err))
				return err
			}
			spin.StopWithSuccess(fmt.Sprintf("Saved snapshot %q (%d layers)", id, len(snap.Layers)))
			printNextStep("List snapshots", "layerview snapshot list")
			return nil
		},
	}
}

func newSnapshotListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := LoadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := cfg.openSnapshotStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			metas, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(metas) == 0 {
				printInfo("No snapshots stored")
				return nil
			}
			for _, meta := range metas {
				printKeyValue(meta.ID, fmt.Sprintf("%d layers, %s",
					meta.Layers, meta.CreatedAt.Format("2006-01-02 15:04:05")))
			}
			printDetail("%d snapshot(s)", len(metas))
			return nil
		},
	}
}

func newSnapshotDeleteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			cfg, err := LoadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := cfg.openSnapshotStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			if err := store.Delete(ctx, id); err != nil {
				return err
			}
			printSuccess("Deleted snapshot %q", id)
			return nil
		},
	}
}
