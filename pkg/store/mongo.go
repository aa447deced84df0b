package store

import (
	"context"
	"regexp"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/observability"
)

// MongoConfig configures a [MongoStore].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore stores one document per key. Expiry relies on a TTL index on
// expires_at; Get also checks the timestamp since the TTL monitor runs
// periodically.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// NewMongoStore connects to MongoDB and ensures the TTL index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "create ttl index")
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		observability.Store().OnStoreMiss(ctx, "mongo")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "mongo find %s", key))
	}
	if entry.ExpiresAt != nil && time.Now().After(*entry.ExpiresAt) {
		observability.Store().OnStoreMiss(ctx, "mongo")
		return nil, false, nil
	}
	observability.Store().OnStoreHit(ctx, "mongo")
	return entry.Data, true, nil
}

func (s *MongoStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := mongoEntry{Key: key, Data: data}
	if ttl > 0 {
		at := time.Now().Add(ttl).UTC()
		entry.ExpiresAt = &at
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, entry, options.Replace().SetUpsert(true))
	if err != nil {
		return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "mongo upsert %s", key))
	}
	observability.Store().OnStoreSet(ctx, "mongo", len(data))
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "mongo delete %s", key))
	}
	return nil
}

func (s *MongoStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1, "expires_at": 1}))
	if err != nil {
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "mongo find %s*", prefix))
	}
	defer cur.Close(ctx)

	now := time.Now()
	var keys []string
	for cur.Next(ctx) {
		var entry mongoEntry
		if err := cur.Decode(&entry); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode mongo entry")
		}
		if entry.ExpiresAt != nil && now.After(*entry.ExpiresAt) {
			continue
		}
		keys = append(keys, entry.Key)
	}
	if err := cur.Err(); err != nil {
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "mongo cursor"))
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var (
	_ Store  = (*MongoStore)(nil)
	_ Lister = (*MongoStore)(nil)
)
