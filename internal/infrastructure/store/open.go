package store

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Config selects and parameterizes a store backend.
type Config struct {
	Backend     string // memory | postgres | dynamo
	PostgresURL string
	TablePrefix string // dynamo table name prefix
}

// Open builds the configured backend. The returned close function releases
// the underlying connection pool and is a no-op for memory and dynamo.
func Open(ctx context.Context, cfg Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), noop, nil

	case "postgres":
		db, err := ConnectPostgres(cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		s, err := NewPostgresStore(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, db.Close, nil

	case "dynamo":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg)
		return NewDynamoStore(client, cfg.TablePrefix), noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
