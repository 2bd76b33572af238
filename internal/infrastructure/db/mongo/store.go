package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionStorage = "client_storage"

// Store is a key/value store backed by a MongoDB collection of
// {_id: <key>, value: <string>} documents.
type Store struct {
	col *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{col: db.Collection(collectionStorage)}
}

type entry struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// Load returns the stored values for keys. Absent keys are left out.
func (s *Store) Load(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return nil, fmt.Errorf("mongo load: %w", err)
	}
	defer cur.Close(ctx)

	var docs []entry
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo load: %w", err)
	}
	for _, d := range docs {
		out[d.Key] = d.Value
	}
	return out, nil
}

// Store upserts every entry in one ordered bulk write.
func (s *Store) Store(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(entries))
	for k, v := range entries {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": k}).
			SetUpdate(bson.M{"$set": bson.M{"value": v}}).
			SetUpsert(true))
	}
	if _, err := s.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("mongo store: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}}); err != nil {
		return fmt.Errorf("mongo remove: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.col.Database().Client().Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (s *Store) Close() error {
	return s.col.Database().Client().Disconnect(context.Background())
}
