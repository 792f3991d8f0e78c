package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// lsCmd represents the ls command
var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List cataloged files",
	Long: `List the files recorded in the catalog, newest scan first by row id.

With --duplicates-only the listing is restricted to files whose content
hash appears more than once.

Example:
  dedup ls
  dedup ls --duplicates-only --limit 20
  dedup ls --json
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

		duplicatesOnly, _ := cmd.Flags().GetBool("duplicates-only")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		asJSON, _ := cmd.Flags().GetBool("json")

		files, err := st.ListFiles(ctx, duplicatesOnly, limit, offset)
		if err != nil {
			return fmt.Errorf("failed to list files: %w", err)
		}

		if asJSON {
			return printJSON(files)
		}

		if len(files) == 0 {
			fmt.Println("No files cataloged. Run 'dedup scan <directory>' first.")
			return nil
		}
		for _, f := range files {
			hash := f.Blake3
			if len(hash) > 12 {
				hash = hash[:12]
			}
			if hash == "" {
				hash = "-"
			}
			fmt.Printf("%-12s %10s %-5s %s\n", hash, humanSize(f.SizeBytes), f.FileType, f.Path)
		}
		fmt.Printf("\n%d files\n", len(files))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)

	lsCmd.Flags().BoolP("duplicates-only", "d", false, "only files whose content hash repeats")
	lsCmd.Flags().Int("limit", 0, "maximum rows to return (0 = default page size)")
	lsCmd.Flags().Int("offset", 0, "rows to skip")
	lsCmd.Flags().Bool("json", false, "emit JSON instead of a table")
}
