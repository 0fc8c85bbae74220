// Path: internal/storage/open.go
package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pokedex/internal/config"
)

// Open connects the KV backend selected by cfg.Driver. The returned close
// function releases it.
func Open(ctx context.Context, cfg config.StorageConfig) (KV, func(context.Context) error, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryKV(nil), func(context.Context) error { return nil }, nil

	case "sqlite":
		kv, err := NewSQLiteKV(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, func(context.Context) error { return kv.Close() }, nil

	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, fmt.Errorf("ping MongoDB: %w", err)
		}
		kv := NewMongoKV(client.Database(cfg.MongoDatabase), cfg.MongoCollection)
		return kv, client.Disconnect, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
