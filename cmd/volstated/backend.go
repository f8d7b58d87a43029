package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/volumekit/pkg/api"
	"github.com/dmitrymomot/volumekit/pkg/config"
	"github.com/dmitrymomot/volumekit/pkg/statestore"
)

// Backend names accepted by STATE_BACKEND.
const (
	backendMemory   = "memory"
	backendBolt     = "bolt"
	backendPostgres = "postgres"
	backendRedis    = "redis"
	backendMongo    = "mongo"
	backendS3       = "s3"
)

type backend struct {
	store  statestore.Store
	checks []api.Check
	close  func() error
}

// openBackend connects the named store. Backend configuration is loaded only
// for the selected backend, so required variables of the others may be unset.
func openBackend(ctx context.Context, name string, log *slog.Logger) (backend, error) {
	switch name {
	case backendMemory:
		return backend{store: statestore.NewMemoryStore(), close: func() error { return nil }}, nil

	case backendBolt:
		cfg, err := config.Load[statestore.BoltConfig]()
		if err != nil {
			return backend{}, err
		}
		s, err := statestore.OpenBoltStore(cfg)
		if err != nil {
			return backend{}, err
		}
		return backend{store: s, close: s.Close}, nil

	case backendPostgres:
		cfg, err := config.Load[statestore.PostgresConfig]()
		if err != nil {
			return backend{}, err
		}
		pool, err := statestore.ConnectPostgres(ctx, cfg)
		if err != nil {
			return backend{}, err
		}
		if err := statestore.MigratePostgres(ctx, pool, cfg, log); err != nil {
			pool.Close()
			return backend{}, err
		}
		return backend{
			store:  statestore.NewPostgresStore(pool),
			checks: []api.Check{{Name: backendPostgres, Fn: statestore.PostgresHealthcheck(pool)}},
			close:  func() error { pool.Close(); return nil },
		}, nil

	case backendRedis:
		cfg, err := config.Load[statestore.RedisConfig]()
		if err != nil {
			return backend{}, err
		}
		client, err := statestore.ConnectRedis(ctx, cfg)
		if err != nil {
			return backend{}, err
		}
		return backend{
			store:  statestore.NewRedisStore(client, cfg.KeyPrefix),
			checks: []api.Check{{Name: backendRedis, Fn: statestore.RedisHealthcheck(client)}},
			close:  client.Close,
		}, nil

	case backendMongo:
		cfg, err := config.Load[statestore.MongoConfig]()
		if err != nil {
			return backend{}, err
		}
		client, err := statestore.ConnectMongo(ctx, cfg)
		if err != nil {
			return backend{}, err
		}
		return backend{
			store:  statestore.NewMongoStore(client.Database(cfg.Database).Collection(cfg.Collection)),
			checks: []api.Check{{Name: backendMongo, Fn: statestore.MongoHealthcheck(client)}},
			close:  func() error { return client.Disconnect(context.Background()) },
		}, nil

	case backendS3:
		cfg, err := config.Load[statestore.S3Config]()
		if err != nil {
			return backend{}, err
		}
		client, err := statestore.NewS3Client(ctx, cfg)
		if err != nil {
			return backend{}, err
		}
		return backend{
			store:  statestore.NewS3Store(client, cfg.Bucket, cfg.Prefix),
			checks: []api.Check{{Name: backendS3, Fn: statestore.S3Healthcheck(client, cfg.Bucket)}},
			close:  func() error { return nil },
		}, nil

	default:
		return backend{}, fmt.Errorf("%w: %q", statestore.ErrUnknownBackend, name)
	}
}
