package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rmCmd represents the rm command
var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Remove a file's record from the catalog",
	Long: `Remove one file's record, including its snapshots, from the catalog.
The file on disk is never touched. Removing a path that is not cataloged
is not an error.

Example:
  dedup rm holiday/beach-copy.jpg
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

		n, err := st.DeleteFileByPath(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", args[0], err)
		}
		if n == 0 {
			fmt.Printf("%s was not in the catalog.\n", args[0])
			return nil
		}
		fmt.Printf("Removed %s from the catalog.\n", args[0])

		// Reclaim the deleted rows' space so the catalog file shrinks.
		if err := st.Vacuum(ctx); err != nil {
			return fmt.Errorf("failed to vacuum catalog: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
