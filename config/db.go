package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens and pings a MongoDB client.
func ConnectDB(ctx context.Context, cfg MongoConfig, logger *zap.Logger) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectionTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.ConnectionTimeout).
		SetConnectTimeout(cfg.ConnectionTimeout)

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("Connected to MongoDB",
		zap.String("database", cfg.Database),
		zap.Bool("transactions", cfg.Transactions),
	)
	return client, nil
}

func DisconnectDB(client *mongo.Client, logger *zap.Logger) {
	if client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		logger.Warn("failed to disconnect from mongodb", zap.Error(err))
		return
	}
	logger.Info("Disconnected from MongoDB")
}
