package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/memory"
	"github.com/phrazzld/taskboard-api/internal/platform/mongodb"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// backend is the store pair selected by configuration together with the
// function that releases its connections.
type backend struct {
	users store.UserStore
	tasks store.TaskStore
	close func(ctx context.Context) error
}

// openBackend connects to the configured database driver.
func openBackend(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*backend, error) {
	timeout := time.Duration(cfg.ConnectTimeoutSeconds) * time.Second

	switch cfg.Driver {
	case "memory":
		s := memory.New()
		logger.Warn("Using in-memory store; data is lost on restart")
		return &backend{
			users: s.Users(),
			tasks: s.Tasks(),
			close: func(context.Context) error { return nil },
		}, nil

	case "mongo":
		client, err := mongodb.Connect(ctx, cfg.URL, timeout)
		if err != nil {
			return nil, err
		}
		s := mongodb.New(client.Database(cfg.Name), logger)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		logger.Info("MongoDB connection established", "database", cfg.Name)
		return &backend{
			users: s.Users(),
			tasks: s.Tasks(),
			close: disconnectMongo(client),
		}, nil

	case "postgres":
		db, err := postgres.Open(ctx, cfg.URL, timeout)
		if err != nil {
			return nil, err
		}
		logger.Info("Database connection established")
		return &backend{
			users: postgres.NewPostgresUserStore(db, logger),
			tasks: postgres.NewPostgresTaskStore(db, logger),
			close: closeSQL(db),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func disconnectMongo(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Disconnect(ctx)
	}
}

func closeSQL(db *sql.DB) func(context.Context) error {
	return func(context.Context) error {
		return db.Close()
	}
}
