package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mustafanalbant1/Event-Finder/internal/api"
	"github.com/mustafanalbant1/Event-Finder/internal/config"
	"github.com/mustafanalbant1/Event-Finder/internal/metrics"
	"github.com/mustafanalbant1/Event-Finder/internal/storage/mongodb"
	"github.com/mustafanalbant1/Event-Finder/internal/uploads"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Event Finder HTTP server",
	Long: `Start the Event Finder HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables
- Connect to MongoDB and ensure the collection indexes
- Serve the JSON API under /api
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Msg("starting event finder server")

	metrics.Init(Version, GitCommit, BuildDate)
	logger.Info().Str("version", Version).Msg("metrics initialized")

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	client, err := mongodb.Connect(connectCtx, cfg.Database)
	connectCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("database disconnect error")
		}
	}()

	db := client.Database(cfg.Database.Name)

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = mongodb.NewRepository(db).EnsureIndexes(indexCtx)
	indexCancel()
	if err != nil {
		return fmt.Errorf("ensuring indexes: %w", err)
	}
	logger.Info().Msg("collection indexes ensured")

	uploadStore, err := uploads.NewLocal(cfg.Uploads.Dir, cfg.Uploads.MaxBytes, "/uploads")
	if err != nil {
		return fmt.Errorf("upload store: %w", err)
	}

	router := api.NewRouter(api.Dependencies{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		DB:      db,
		Uploads: uploadStore,
		Version: Version,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second, // Total time to read request
		WriteTimeout:      30 * time.Second, // Total time to write response
		ReadHeaderTimeout: 5 * time.Second,  // Time to read headers
		MaxHeaderBytes:    1 << 20,          // 1 MB max header size
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, logger)
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
