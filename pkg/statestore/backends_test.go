package statestore_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/volumekit/pkg/statestore"
)

// The network backends run only when their connection URL is exported.

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("PG_CONN_URL")
	if url == "" {
		t.Skip("PG_CONN_URL is not set")
	}
	ctx := context.Background()
	cfg := statestore.PostgresConfig{
		ConnectionString: url,
		MaxOpenConns:     4,
		MaxIdleConns:     1,
		RetryAttempts:    1,
		RetryInterval:    time.Second,
		MigrationsTable:  "volstate_migrations_test",
	}

	pool, err := statestore.ConnectPostgres(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, statestore.MigratePostgres(ctx, pool, cfg, slog.Default()))
	require.NoError(t, statestore.PostgresHealthcheck(pool)(ctx))

	runStoreSuite(t, statestore.NewPostgresStore(pool))
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL is not set")
	}
	ctx := context.Background()

	client, err := statestore.ConnectRedis(ctx, statestore.RedisConfig{
		ConnectionURL:  url,
		RetryAttempts:  1,
		RetryInterval:  time.Second,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, statestore.RedisHealthcheck(client)(ctx))
	runStoreSuite(t, statestore.NewRedisStore(client, "volstate-test:"))
}

func TestMongoStore(t *testing.T) {
	url := os.Getenv("MONGODB_URL")
	if url == "" {
		t.Skip("MONGODB_URL is not set")
	}
	ctx := context.Background()

	client, err := statestore.ConnectMongo(ctx, statestore.MongoConfig{
		ConnectionURL:  url,
		ConnectTimeout: 5 * time.Second,
		MaxPoolSize:    10,
		RetryAttempts:  1,
		RetryInterval:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	coll := client.Database("volstate_test").Collection("volume_states")
	t.Cleanup(func() { _ = coll.Drop(context.Background()) })

	require.NoError(t, statestore.MongoHealthcheck(client)(ctx))
	runStoreSuite(t, statestore.NewMongoStore(coll))
}
