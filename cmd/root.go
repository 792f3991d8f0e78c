package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"media-dedup/internal/store"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	dbFlag  string
	quiet   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Find exact and near-duplicate media files",
	Long: `dedup scans a directory tree of images and videos, records strong and
perceptual hashes in a SQLite catalog, and reports groups of exact or
visually similar duplicates.

A typical session:
  dedup scan ~/Pictures      # build or refresh the catalog
  dedup exact                # byte-identical groups
  dedup similar --phash 6    # near-duplicates at a tighter threshold
  dedup serve                # browse the catalog over HTTP`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). The context is cancelled
// on SIGINT/SIGTERM so long scans shut down cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./dedup.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "catalog database path (default from config, else catalog.db)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "disable progress bars and reduce output")
}

// openStore opens the catalog database named by --db, falling back to the
// config file and then the built-in default.
func openStore(ctx context.Context, cfg *Config) (*store.Store, error) {
	path := dbFlag
	if path == "" {
		path = cfg.Database
	}

	st, err := store.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	return st, nil
}
