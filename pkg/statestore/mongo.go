package statestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	ConnectionURL   string        `env:"MONGODB_URL,required"`                          // ConnectionURL is the URL of the deployment.
	Database        string        `env:"MONGODB_DATABASE" envDefault:"volstate"`        // Database holds the state collection.
	Collection      string        `env:"MONGODB_COLLECTION" envDefault:"volume_states"` // Collection stores one document per record.
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`      // ConnectTimeout is the driver connect timeout.
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`        // MaxPoolSize caps the connection pool.
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`          // MinPoolSize is the number of warm connections.
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"`  // MaxConnIdleTime is how long an idle connection is kept.
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`         // RetryAttempts is the number of connection attempts.
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"2s"`        // RetryInterval is the delay between attempts.
}

// ConnectMongo creates a client and pings the primary, retrying on failure.
func ConnectMongo(ctx context.Context, cfg MongoConfig) (*mongo.Client, error) {
	var lastErr error
	for range max(cfg.RetryAttempts, 1) {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime),
		)
		if err == nil {
			if err = client.Ping(ctx, nil); err == nil {
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}
		lastErr = err
		if werr := sleepCtx(ctx, cfg.RetryInterval); werr != nil {
			return nil, errors.Join(ErrFailedToConnect, werr)
		}
	}
	return nil, errors.Join(ErrFailedToConnect, lastErr)
}

type stateDocument struct {
	ID         string    `bson:"_id"`
	ResourceID string    `bson:"resource_id"`
	Domain     string    `bson:"domain"`
	State      string    `bson:"state"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// MongoStore keeps one document per record, keyed by "<id>/<domain>".
// Compare-and-swap is an UpdateOne filtered on the expected state.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore wraps the given collection.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) InitState(ctx context.Context, id uuid.UUID, d volstate.Domain, state string) error {
	_, err := s.coll.InsertOne(ctx, stateDocument{
		ID:         recordKey(id, d),
		ResourceID: id.String(),
		Domain:     d.String(),
		State:      state,
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert state: %w", err)
	}
	return nil
}

func (s *MongoStore) GetState(ctx context.Context, id uuid.UUID, d volstate.Domain) (string, error) {
	var doc stateDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: recordKey(id, d)}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("find state: %w", err)
	}
	return doc.State, nil
}

func (s *MongoStore) SetState(ctx context.Context, id uuid.UUID, d volstate.Domain, expected, next string) error {
	filter := bson.D{
		{Key: "_id", Value: recordKey(id, d)},
		{Key: "state", Value: expected},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "state", Value: next},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if _, err := s.GetState(ctx, id, d); err != nil {
		return err
	}
	return ErrConflict
}

// MongoHealthcheck returns a probe that pings the deployment.
func MongoHealthcheck(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, nil); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
