package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"media-dedup/internal/engine"
	"media-dedup/internal/walker"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Scan a directory tree into the catalog",
	Long: `Walk a directory tree, hash every regular file, fingerprint decodable
images, and sample frames from videos that ffprobe can read. Results are
written to the catalog database; re-scanning updates records in place.

Interrupting with Ctrl-C stops at the next file boundary and leaves the
catalog holding a valid prefix of the tree.

Example:
  dedup scan ~/Pictures
  dedup scan --snapshots 5 --max-dim 512 /mnt/footage
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		opts := scanOptions(cmd, cfg)

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		e := engine.New(st)
		token := engine.NewCancelToken()
		go func() {
			<-ctx.Done()
			token.Cancel()
		}()

		root := args[0]

		// Pre-scan sizes the progress bar. Skipped in quiet mode where
		// nobody is watching.
		var totals *walker.Totals
		var bar *progressbar.ProgressBar
		if !quiet {
			t, err := e.Prescan(root, token, nil)
			if err != nil {
				if errors.Is(err, engine.ErrCancelled) {
					color.Yellow("Scan cancelled before it started.")
					return nil
				}
				return err
			}
			totals = &t
			fmt.Fprintf(os.Stderr, "Scanning %d files (%s) under %s\n", t.Files, humanSize(t.Bytes), root)
			bar = progressbar.NewOptions64(t.Bytes,
				progressbar.OptionSetDescription("scanning"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetWidth(50),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionShowCount(),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprint(os.Stderr, "\n")
				}),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionFullWidth(),
			)
		}

		summary, err := e.Scan(ctx, root, opts, token, totals, func(p engine.Progress) {
			if bar != nil {
				// #nosec G104 - progress bar updates are not critical
				bar.Set64(p.BytesSeen)
			}
		})
		if bar != nil {
			fmt.Fprint(os.Stderr, "\n")
		}

		switch {
		case errors.Is(err, engine.ErrCancelled):
			color.Yellow("Scan cancelled; the catalog holds a partial prefix.")
		case err != nil:
			return err
		default:
			color.Green("✓ Scan complete")
		}

		fmt.Printf("  Files seen:    %d\n", summary.FilesSeen)
		fmt.Printf("  Files hashed:  %d\n", summary.FilesHashed)
		fmt.Printf("  Files skipped: %d\n", summary.FilesSkipped)
		fmt.Printf("  Bytes seen:    %s\n", humanSize(summary.BytesSeen))
		fmt.Printf("  Duration:      %s\n", summary.Duration.Round(time.Millisecond))
		return nil
	},
}

// scanOptions merges config-file defaults with any flags set on this
// invocation.
func scanOptions(cmd *cobra.Command, cfg *Config) engine.Options {
	opts := cfg.Scan

	if cmd.Flags().Changed("no-hash") {
		noHash, _ := cmd.Flags().GetBool("no-hash")
		opts.HashFiles = !noHash
	}
	if cmd.Flags().Changed("no-perceptual") {
		noPerceptual, _ := cmd.Flags().GetBool("no-perceptual")
		opts.PerceptualHashes = !noPerceptual
	}
	if cmd.Flags().Changed("no-snapshots") {
		noSnapshots, _ := cmd.Flags().GetBool("no-snapshots")
		opts.CaptureSnapshots = !noSnapshots
	}
	if cmd.Flags().Changed("snapshots") {
		opts.SnapshotsPerVideo, _ = cmd.Flags().GetInt("snapshots")
	}
	if cmd.Flags().Changed("max-dim") {
		opts.SnapshotMaxDim, _ = cmd.Flags().GetInt("max-dim")
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers, _ = cmd.Flags().GetInt("workers")
	}
	return opts
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Bool("no-hash", false, "skip strong content hashes")
	scanCmd.Flags().Bool("no-perceptual", false, "skip perceptual fingerprints")
	scanCmd.Flags().Bool("no-snapshots", false, "skip video frame sampling")
	scanCmd.Flags().Int("snapshots", 0, "frames to sample per video (1-10)")
	scanCmd.Flags().Int("max-dim", 0, "longest frame side before fingerprinting (128-4096)")
	scanCmd.Flags().Int("workers", 0, "worker pool size (0 = from CPU count)")
}
