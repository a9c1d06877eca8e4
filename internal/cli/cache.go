package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// newCacheCmd creates the payload cache management command.
func newCacheCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the encoded payload cache",
	}

	cmd.PersistentFlags().StringVar(&dir, "dir", "", "cache directory (defaults to the per-user cache)")

	cmd.AddCommand(newCacheClearCmd(&dir))
	cmd.AddCommand(newCachePathCmd(&dir))

	return cmd
}

func resolveCacheDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return defaultCacheDir()
}

// newCacheClearCmd creates the "cache clear" subcommand.
func newCacheClearCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached layer payloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveCacheDir(*dir)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}

			if _, err := os.Stat(target); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			count := 0
			err = filepath.Walk(target, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return nil // Skip errors, continue walking
				}
				if path == target {
					return nil
				}
				if !info.IsDir() {
					if err := os.Remove(path); err == nil {
						count++
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			// Clean up empty shard directories
			_ = filepath.Walk(target, func(path string, info os.FileInfo, err error) error {
				if err != nil || path == target {
					return nil
				}
				if info.IsDir() {
					os.Remove(path)
				}
				return nil
			})

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", target)
			return nil
		},
	}
}

// newCachePathCmd creates the "cache path" subcommand.
func newCachePathCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveCacheDir(*dir)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(target)
			return nil
		},
	}
}
