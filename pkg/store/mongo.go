package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tjorvi/jujutsuka/pkg/errors"
)

const snapshotCollection = "snapshots"

// MongoStore persists snapshots in a MongoDB collection. The graph documents
// already carry bson tags, so they are stored natively rather than as opaque
// JSON blobs, which keeps them queryable.
type MongoStore struct {
	client *mongo.Client
	col    *mongo.Collection
}

// NewMongoStore connects to MongoDB and binds to the snapshots collection of
// the given database. The connection is verified with a ping before
// returning.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoStore{
		client: client,
		col:    client.Database(database).Collection(snapshotCollection),
	}, nil
}

// Save upserts a snapshot by hash. CreatedAt is filled in when unset.
func (s *MongoStore) Save(ctx context.Context, snap Snapshot) error {
	if snap.Hash == "" {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot hash cannot be empty")
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.col.ReplaceOne(ctx, bson.M{"_id": snap.Hash}, snap, opts); err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.Hash, err)
	}
	return nil
}

// Load retrieves a snapshot by hash.
func (s *MongoStore) Load(ctx context.Context, hash string) (Snapshot, error) {
	var snap Snapshot
	err := s.col.FindOne(ctx, bson.M{"_id": hash}).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return Snapshot{}, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %s not found", hash)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot %s: %w", hash, err)
	}
	return snap, nil
}

// Recent lists the newest snapshots, newest first.
func (s *MongoStore) Recent(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer cur.Close(ctx)

	var snaps []Snapshot
	if err := cur.All(ctx, &snaps); err != nil {
		return nil, fmt.Errorf("decode snapshots: %w", err)
	}
	return snaps, nil
}

// Delete removes a snapshot by hash.
func (s *MongoStore) Delete(ctx context.Context, hash string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": hash}); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", hash, err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
