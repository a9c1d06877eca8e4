package snapshot

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/layerview/layerview/pkg/errors"
)

// MongoStore persists snapshots in a MongoDB collection, for serve
// deployments where several instances share stored views.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Save implements Store.
func (s *MongoStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := errors.ValidateAlias(snap.ID); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": snap.ID}, snap,
		options.Replace().SetUpsert(true))
	return err
}

// Load implements Store.
func (s *MongoStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	var snap Snapshot
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeNotFound, "no snapshot %q", id)
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context) ([]Meta, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "created_at": 1, "layers": 1}).
		SetSort(bson.M{"created_at": -1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var metas []Meta
	for cur.Next(ctx) {
		var doc struct {
			ID        string     `bson:"_id"`
			CreatedAt time.Time  `bson:"created_at"`
			Layers    []bson.Raw `bson:"layers"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		metas = append(metas, Meta{
			ID:        doc.ID,
			CreatedAt: doc.CreatedAt,
			Layers:    len(doc.Layers),
		})
	}
	return metas, cur.Err()
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
