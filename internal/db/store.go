package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"paylinks/internal/config"
	"paylinks/internal/repository"
)

// Store is an opened link repository plus the function releasing its resources.
type Store struct {
	Links repository.LinkRepository
	Close func() error
}

// OpenStore connects the configured store driver and returns its link
// repository. When migrate is true, SQL drivers run AutoMigrate and
// DynamoDB creates the table if it is missing.
func OpenStore(ctx context.Context, cfg config.StoreConfig, migrate bool, log *zap.Logger) (*Store, error) {
	log = log.With(zap.String("store_driver", cfg.Driver), zap.String("table", cfg.TableName))

	switch cfg.Driver {
	case config.DriverDynamoDB:
		client, err := NewDynamoDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if migrate {
			created, err := repository.EnsureTable(ctx, client, cfg.TableName, 2*time.Minute)
			if err != nil {
				return nil, err
			}
			if created {
				log.Info("DynamoDB table created")
			}
		}
		return &Store{
			Links: repository.NewDynamoLinkRepository(client, cfg.TableName),
			Close: func() error { return nil },
		}, nil

	case config.DriverMySQL, config.DriverPostgres:
		open := NewMySQL
		dsn := cfg.MySQLDSN
		if cfg.Driver == config.DriverPostgres {
			open = NewPostgres
			dsn = cfg.PostgresDSN
		}
		gormDB, err := open(dsn)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := repository.Migrate(gormDB); err != nil {
				return nil, fmt.Errorf("auto-migrate: %w", err)
			}
			log.Info("SQL schema migrated")
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, err
		}
		return &Store{
			Links: repository.NewGormLinkRepository(gormDB),
			Close: sqlDB.Close,
		}, nil

	case config.DriverRedis:
		client := NewRedis(cfg)
		return &Store{
			Links: repository.NewRedisLinkRepository(client, cfg.TableName),
			Close: client.Close,
		}, nil

	case config.DriverMemory:
		log.Warn("Using in-memory store, records are lost on restart")
		return &Store{
			Links: repository.NewMemoryLinkRepository(),
			Close: func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
