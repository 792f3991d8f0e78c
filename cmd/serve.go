package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"media-dedup/internal/logging"
	"media-dedup/internal/metrics"
	"media-dedup/internal/webapi"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP",
	Long: `Start a read-mostly HTTP server over the catalog: file listings,
duplicate groups, fileset metadata, and snapshot fingerprints as JSON,
plus /healthz and Prometheus metrics on /metrics.

The server never scans; run 'dedup scan' separately and the server picks
up whatever the catalog holds.

Example:
  dedup serve
  dedup serve --addr 127.0.0.1:9090
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

		addr := cfg.Serve.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		metrics.SetAppInfo(Version)
		collector := metrics.NewCollector(st.Path(), 30*time.Second)
		collector.Start()
		defer collector.Stop()

		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			st.UpdateDBMetrics()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					st.UpdateDBMetrics()
				}
			}
		}()

		srv := &http.Server{
			Addr:         addr,
			Handler:      webapi.New(st, Version).Router(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			logging.Info("Shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logging.Warn("Server shutdown error: %v", err)
			}
		}()

		logging.Info("Serving catalog %s on %s", st.Path(), addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default from config, else :8080)")
}
