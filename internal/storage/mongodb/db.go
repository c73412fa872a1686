package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mustafanalbant1/Event-Finder/internal/config"
)

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// Repository bundles the per-collection repositories over one database.
type Repository struct {
	users  *UsersRepository
	events *EventsRepository
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		users:  NewUsersRepository(db),
		events: NewEventsRepository(db),
	}
}

func (r *Repository) Users() *UsersRepository   { return r.users }
func (r *Repository) Events() *EventsRepository { return r.events }

// EnsureIndexes creates the indexes for every collection. Safe to run on
// every startup; existing indexes are left alone.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	if err := r.users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if err := r.events.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("events indexes: %w", err)
	}
	return nil
}
