package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"media-dedup/internal/cluster"
)

// similarCmd represents the similar command
var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Show groups of visually similar files",
	Long: `Group cataloged files whose perceptual fingerprints fall within the
Hamming distance thresholds. Two files match only when every fingerprint
family present on both sides passes its threshold; groups are the
connected components of those matches, so A-B and B-C place all three
together.

Thresholds are clamped into [1, 32]. Lower values are stricter; the
defaults (ahash 10, dhash 10, phash 8) catch resizes and light edits.

Example:
  dedup similar
  dedup similar --phash 4
  dedup similar --ahash 16 --dhash 16 --phash 12 --json
`,
	Args: cobra.NoArgs,
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

		thresholds := cfg.Thresholds
		if cmd.Flags().Changed("ahash") {
			thresholds.AHash, _ = cmd.Flags().GetInt("ahash")
		}
		if cmd.Flags().Changed("dhash") {
			thresholds.DHash, _ = cmd.Flags().GetInt("dhash")
		}
		if cmd.Flags().Changed("phash") {
			thresholds.PHash, _ = cmd.Flags().GetInt("phash")
		}
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		asJSON, _ := cmd.Flags().GetBool("json")

		files, err := st.ListAllFiles(ctx)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		groups := cluster.SimilarGroups(files, thresholds, limit, offset)

		if asJSON {
			return printJSON(groups)
		}

		if len(groups) == 0 {
			fmt.Println("No similar files found at these thresholds.")
			return nil
		}
		for _, g := range groups {
			color.Cyan("%s", g.Label)
			for _, m := range g.Files {
				fmt.Printf("  %5.1f%%  %10s  %s\n",
					m.ConfidencePercent, humanSize(m.File.SizeBytes), m.File.Path)
			}
			fmt.Println()
		}
		fmt.Printf("%d groups\n", len(groups))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().Int("ahash", 0, "average-hash distance threshold (1-32)")
	similarCmd.Flags().Int("dhash", 0, "difference-hash distance threshold (1-32)")
	similarCmd.Flags().Int("phash", 0, "DCT-hash distance threshold (1-32)")
	similarCmd.Flags().Int("limit", 0, "maximum groups to return (0 = max)")
	similarCmd.Flags().Int("offset", 0, "groups to skip")
	similarCmd.Flags().Bool("json", false, "emit JSON instead of a listing")
}
