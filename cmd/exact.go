package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"media-dedup/internal/cluster"
)

// exactCmd represents the exact command
var exactCmd = &cobra.Command{
	Use:   "exact",
	Short: "Show groups of byte-identical files",
	Long: `Group cataloged files by strong content hash and print every group
with two or more members. Files the scan could not read never group.

Pagination counts groups, not files, so a group is never split across
pages.

Example:
  dedup exact
  dedup exact --limit 10 --json
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

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		asJSON, _ := cmd.Flags().GetBool("json")

		files, err := st.ListAllFiles(ctx)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		groups := cluster.ExactGroups(files, limit, offset)

		if asJSON {
			return printJSON(groups)
		}

		if len(groups) == 0 {
			fmt.Println("No exact duplicates found.")
			return nil
		}
		for _, g := range groups {
			color.Cyan("%s", g.Label)
			for _, f := range g.Files {
				fmt.Printf("  %10s  %s\n", humanSize(f.SizeBytes), f.Path)
			}
			fmt.Println()
		}
		fmt.Printf("%d groups\n", len(groups))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exactCmd)

	exactCmd.Flags().Int("limit", 0, "maximum groups to return (0 = no cap)")
	exactCmd.Flags().Int("offset", 0, "groups to skip")
	exactCmd.Flags().Bool("json", false, "emit JSON instead of a listing")
}
