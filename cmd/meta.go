package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// metaCmd represents the meta command
var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Show or edit the catalog's metadata",
	Long: `Show the catalog's descriptive metadata: name, description, notes, the
scanned root, and the status of the last scan.

Use 'dedup meta set' to edit the fields. The creation time is fixed when
the catalog is created.
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

		meta, err := st.GetFilesetMetadata(ctx)
		if err != nil {
			return fmt.Errorf("failed to read metadata: %w", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(meta)
		}

		fmt.Printf("Name:        %s\n", orDash(meta.Name))
		fmt.Printf("Description: %s\n", orDash(meta.Description))
		fmt.Printf("Notes:       %s\n", orDash(meta.Notes))
		fmt.Printf("Root:        %s\n", orDash(meta.RootPath))
		fmt.Printf("Status:      %s\n", orDash(meta.Status))
		if meta.CreatedAt > 0 {
			fmt.Printf("Created:     %s\n", time.Unix(meta.CreatedAt, 0).Format(time.RFC3339))
		}
		return nil
	},
}

// metaSetCmd edits the metadata fields
var metaSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set catalog metadata fields",
	Long: `Set the catalog's name, description, notes, or status. Only the flags
given are changed. Note that the next scan resets the status.

Example:
  dedup meta set --name "family archive" --notes "offsite copy"
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

		meta, err := st.GetFilesetMetadata(ctx)
		if err != nil {
			return fmt.Errorf("failed to read metadata: %w", err)
		}

		changed := false
		if cmd.Flags().Changed("name") {
			meta.Name, _ = cmd.Flags().GetString("name")
			changed = true
		}
		if cmd.Flags().Changed("description") {
			meta.Description, _ = cmd.Flags().GetString("description")
			changed = true
		}
		if cmd.Flags().Changed("notes") {
			meta.Notes, _ = cmd.Flags().GetString("notes")
			changed = true
		}
		if cmd.Flags().Changed("status") {
			meta.Status, _ = cmd.Flags().GetString("status")
			changed = true
		}
		if !changed {
			return fmt.Errorf("nothing to set, use --name, --description, --notes, or --status")
		}

		if err := st.SetFilesetMetadata(ctx, meta); err != nil {
			return fmt.Errorf("failed to write metadata: %w", err)
		}
		fmt.Println("Metadata updated.")
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(metaCmd)
	metaCmd.AddCommand(metaSetCmd)

	metaCmd.Flags().Bool("json", false, "emit JSON instead of a listing")
	metaSetCmd.Flags().String("name", "", "catalog name")
	metaSetCmd.Flags().String("description", "", "catalog description")
	metaSetCmd.Flags().String("notes", "", "free-form notes")
	metaSetCmd.Flags().String("status", "", "scan status label")
}
