package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appconfig "github.com/ben-bakker/searchai/internal/config"
	"github.com/ben-bakker/searchai/internal/observability"
	"github.com/ben-bakker/searchai/internal/webui"
)

var (
	serveHost         string
	servePort         int
	serveValidateKeys bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the search gateway HTTP server",
	Long: `
The serve command starts the HTTP gateway:
- POST /api/search   search, deduplicate and optionally answer
- GET  /api/health   liveness check
- /                  embedded search page

Configuration is read from the environment (and .env when present).

Example:
  searchai serve                        # Start with defaults (0.0.0.0:5000)
  searchai serve --port 8080            # Use custom port
  searchai serve --validate-keys        # Check provider API keys before listening
`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "",
		"Host to bind the server (overrides SERVER_HOST)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0,
		"Port to bind the server (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveValidateKeys, "validate-keys", false,
		"Validate provider API keys on startup (overrides VALIDATE_KEYS_ON_STARTUP)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags)

	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.Flags().Changed("host") {
		cfg.ServerHost = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.ServerPort = servePort
	}
	if cmd.Flags().Changed("validate-keys") {
		cfg.ValidateKeysOnStartup = serveValidateKeys
	}

	// Create context with signal handling
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Printf("Received signal: %v", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	shutdownTelemetry, err := observability.Init(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Printf("Telemetry shutdown error: %v", err)
		}
	}()

	comps, err := newComponents(cfg, log.New(os.Stdout, "[search] ", log.LstdFlags))
	if err != nil {
		return err
	}

	if cfg.ValidateKeysOnStartup {
		validateCtx, validateCancel := context.WithTimeout(ctx, cfg.UpstreamTimeout)
		err := validateKeys(validateCtx, comps.validators(), logger)
		validateCancel()
		if err != nil {
			return err
		}
	}

	server, err := webui.NewServer(webui.ServerConfigFromConfig(cfg), comps.service, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return server.Run(ctx)
}
