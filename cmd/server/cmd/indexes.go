package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mustafanalbant1/Event-Finder/internal/config"
	"github.com/mustafanalbant1/Event-Finder/internal/storage/mongodb"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB collection indexes",
	Long: `Create the indexes the server relies on: the unique email index on
users and the 2dsphere and lookup indexes on events.

The serve command runs this on startup; the standalone command exists for
provisioning a database ahead of a deploy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndexes()
	},
}

func runIndexes() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logger := config.NewLogger(cfg.Logging)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongodb.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	repo := mongodb.NewRepository(client.Database(cfg.Database.Name))
	if err := repo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensuring indexes: %w", err)
	}

	logger.Info().Str("database", cfg.Database.Name).Msg("indexes ensured")
	return nil
}
