package database

import (
	"context"
	"fmt"
	"time"

	"prediction-league/logging"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Config struct {
	URI      string
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Timeout  time.Duration
}

// ConnectionURI returns URI when set, otherwise builds one from the parts
func (c Config) ConnectionURI() string {
	if c.URI != "" {
		return c.URI
	}
	if c.Username != "" && c.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=%s",
			c.Username, c.Password, c.Host, c.Port, c.Database, c.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s", c.Host, c.Port, c.Database)
}

type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	timeout  time.Duration
}

func NewMongoConnection(ctx context.Context, config Config) (*MongoDB, error) {
	logger := logging.WithPrefix("MongoDB")
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = MediumTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if config.Username != "" && config.URI == "" {
		logger.Infof("Connecting with authentication as user: %s", config.Username)
	} else {
		logger.Info("Connecting")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.ConnectionURI()))
	if err != nil {
		logger.Errorf("Failed to connect: %v", err)
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Errorf("Failed to ping: %v", err)
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Infof("Connected, database=%s", config.Database)
	return &MongoDB{
		client:   client,
		database: client.Database(config.Database),
		timeout:  timeout,
	}, nil
}

// WithTimeout bounds one operation by the configured timeout, falling back to
// ShortTimeout when none was set.
func (m *MongoDB) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return WithShortTimeout(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

func (m *MongoDB) Close() error {
	logger := logging.WithPrefix("MongoDB")
	ctx, cancel := m.WithTimeout(context.Background())
	defer cancel()

	err := m.client.Disconnect(ctx)
	if err != nil {
		logger.Errorf("Error disconnecting: %v", err)
	} else {
		logger.Info("Connection closed successfully")
	}
	return err
}

// Ping checks the server is reachable
func (m *MongoDB) Ping(ctx context.Context) error {
	ctx, cancel := m.WithTimeout(ctx)
	defer cancel()

	if err := m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("MongoDB ping failed: %w", err)
	}
	return nil
}

func (m *MongoDB) GetCollection(name string) *mongo.Collection {
	return m.database.Collection(name)
}
