package statestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	ConnectionURL  string        `env:"REDIS_URL,required"`                      // ConnectionURL is in the form "redis://:password@localhost:6379/0".
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"volstate:"` // KeyPrefix namespaces every record key.
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`     // RetryAttempts is the number of connection attempts.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`    // RetryInterval is the delay between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`  // ConnectTimeout bounds the whole connect loop.
}

// ConnectRedis parses the URL and pings the server until it answers or the
// attempts run out.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToConnect, err)
	}

	var lastErr error
	for range max(cfg.RetryAttempts, 1) {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()
		if err := sleepCtx(ctx, cfg.RetryInterval); err != nil {
			return nil, errors.Join(ErrFailedToConnect, err)
		}
	}
	return nil, errors.Join(ErrFailedToConnect, lastErr)
}

// casScript swaps KEYS[1] to ARGV[2] only while it holds ARGV[1].
// Returns -1 for a missing key, 0 for a mismatch and 1 on success.
var casScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if not cur then
	return -1
end
if cur ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2])
return 1
`)

// RedisStore keeps each record as a plain string key.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore wraps a connected client. Keys are "<prefix><id>/<domain>".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id uuid.UUID, d volstate.Domain) string {
	return s.prefix + recordKey(id, d)
}

func (s *RedisStore) InitState(ctx context.Context, id uuid.UUID, d volstate.Domain, state string) error {
	ok, err := s.client.SetNX(ctx, s.key(id, d), state, 0).Result()
	if err != nil {
		return fmt.Errorf("init state: %w", err)
	}
	if !ok {
		return ErrAlreadyExists
	}
	return nil
}

func (s *RedisStore) GetState(ctx context.Context, id uuid.UUID, d volstate.Domain) (string, error) {
	state, err := s.client.Get(ctx, s.key(id, d)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get state: %w", err)
	}
	return state, nil
}

func (s *RedisStore) SetState(ctx context.Context, id uuid.UUID, d volstate.Domain, expected, next string) error {
	res, err := casScript.Run(ctx, s.client, []string{s.key(id, d)}, expected, next).Int()
	if err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	switch res {
	case 1:
		return nil
	case -1:
		return ErrNotFound
	default:
		return ErrConflict
	}
}

// RedisHealthcheck returns a probe that pings the server.
func RedisHealthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
