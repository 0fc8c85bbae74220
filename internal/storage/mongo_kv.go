// Path: internal/storage/mongo_kv.go
package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// slotDocument is one key-value slot as stored in MongoDB.
type slotDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoKV is the MongoDB implementation of the KV interface.
type MongoKV struct {
	collection *mongo.Collection
}

// NewMongoKV creates a new storage adapter for key-value slots.
func NewMongoKV(db *mongo.Database, collectionName string) *MongoKV {
	return &MongoKV{
		collection: db.Collection(collectionName),
	}
}

// Get implements the KV interface.
func (s *MongoKV) Get(ctx context.Context, key string) (string, bool, error) {
	var doc slotDocument
	filter := bson.M{"_id": key}
	err := s.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		// A slot that was never written is not an error.
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, err
	}
	return doc.Value, true, nil
}

// Set implements the KV interface.
func (s *MongoKV) Set(ctx context.Context, key, value string) error {
	doc := slotDocument{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"_id": key}
	_, err := s.collection.ReplaceOne(ctx, filter, doc, opts)
	return err
}
