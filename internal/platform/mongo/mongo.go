package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"productverification/internal/platform/config"
)

// Client wraps the mongo client with the configured database.
type Client struct {
	*mongo.Client
	Database *mongo.Database
}

// Connect dials MongoDB and pings the primary.
// Returns nil if the URL is empty (Mongo not configured).
func Connect(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}
	return &Client{Client: client, Database: client.Database(cfg.Database)}, nil
}

// Health pings the primary.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	return c.Disconnect(ctx)
}
