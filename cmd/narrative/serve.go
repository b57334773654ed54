// narrative API
//
//	@title			narrative API
//	@version		1.0
//	@description	Deterministic, layout-only PDF narrative extraction API.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/narrative
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/narrative/internal/config"
	"github.com/jackzampolin/narrative/internal/home"
	"github.com/jackzampolin/narrative/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the narrative server",
	Long: `Start the narrative HTTP API server.

The server provides:
  - POST /api/narrative/analyze          - run the pipeline over a document
  - GET  /api/narrative/jobs/{id}        - check an analyze job's status
  - GET  /api/narrative/{doc}/anchors/{token} - build an anchor for a token
  - POST /api/narrative/{doc}/selection  - resolve an anchor or a hit-test

Examples:
  narrative serve                    # Start on default port 8080
  narrative serve --port 3000        # Start on custom port
  narrative serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: GetLogLevel(),
		}))

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Load configuration. Priority: --config flag > ./config.yaml > ~/.narrative/config.yaml
		configFile := cfgFile
		if configFile == "" {
			if _, err := os.Stat("config.yaml"); err == nil {
				configFile = "config.yaml"
			} else {
				configFile = filepath.Join(h.Path(), "config.yaml")
			}
		}

		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			logger.Info("creating default config", "path", configFile)
			if err := config.WriteDefault(configFile); err != nil {
				logger.Warn("failed to write default config", "error", err)
			}
		}
		cfgMgr, err := config.NewManager(configFile)
		if err != nil {
			logger.Warn("config not loaded, using defaults", "error", err)
		} else {
			cfgMgr.WatchConfig()
			logger.Info("configuration loaded", "file", configFile)
		}

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: cfgMgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
