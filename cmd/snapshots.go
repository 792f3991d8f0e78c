package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"media-dedup/internal/store"
)

// snapshotsCmd represents the snapshots command
var snapshotsCmd = &cobra.Command{
	Use:   "snapshots <path>",
	Short: "Show a video's sampled frame fingerprints",
	Long: `List the frame fingerprints sampled from one cataloged video. The path
is the catalog-relative path printed by 'dedup ls'.

Example:
  dedup snapshots holiday/beach.mp4
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		snaps, err := st.ListSnapshotsByPath(ctx, args[0])
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				fmt.Printf("%s is not in the catalog.\n", args[0])
				return nil
			}
			return fmt.Errorf("failed to list snapshots: %w", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(snaps)
		}

		if len(snaps) == 0 {
			fmt.Printf("No snapshots recorded for %s.\n", args[0])
			return nil
		}
		for _, s := range snaps {
			at := time.Duration(s.AtMs) * time.Millisecond
			fmt.Printf("  frame %d/%d at %s", s.SnapshotIndex+1, s.SnapshotCount, at.Round(time.Millisecond))
			if s.AHash != nil && s.DHash != nil && s.PHash != nil {
				fmt.Printf("  ahash=%016x dhash=%016x phash=%016x", *s.AHash, *s.DHash, *s.PHash)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)

	snapshotsCmd.Flags().Bool("json", false, "emit JSON instead of a listing")
}
