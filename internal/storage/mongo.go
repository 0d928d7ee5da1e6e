package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

// MongoGateway persists records in a MongoDB collection, keyed by post id
// via _id so Put is a natural ReplaceOne upsert.
type MongoGateway struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoGateway connects and ensures the platform index used by the seen
// set bootstrap query.
func NewMongoGateway(ctx context.Context, uri, database, collection string, logger *slog.Logger) (*MongoGateway, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "platform", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("mongodb index: %w", err)
	}

	return &MongoGateway{
		client:     client,
		collection: coll,
		logger:     logger.With("component", "mongo_gateway"),
	}, nil
}

// Put implements Gateway via ReplaceOne upsert.
func (g *MongoGateway) Put(ctx context.Context, rec *types.PostRecord) error {
	if !rec.Valid() {
		return types.ErrInvalidRecord
	}
	_, err := g.collection.ReplaceOne(ctx,
		bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return &types.StorageError{Backend: "mongodb", Err: err}
	}
	g.logger.Debug("record stored", "id", rec.ID, "platform", rec.Platform)
	return nil
}

// Get implements Gateway.
func (g *MongoGateway) Get(ctx context.Context, id string) (*types.PostRecord, error) {
	var rec types.PostRecord
	err := g.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Err: err}
	}
	return &rec, nil
}

// GetAll implements Gateway.
func (g *MongoGateway) GetAll(ctx context.Context) ([]*types.PostRecord, error) {
	return g.find(ctx, bson.M{})
}

// GetAllByPlatform implements Gateway.
func (g *MongoGateway) GetAllByPlatform(ctx context.Context, p types.Platform) ([]*types.PostRecord, error) {
	return g.find(ctx, bson.M{"platform": p})
}

func (g *MongoGateway) find(ctx context.Context, filter bson.M) ([]*types.PostRecord, error) {
	cur, err := g.collection.Find(ctx, filter)
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Err: err}
	}
	defer cur.Close(ctx)

	var out []*types.PostRecord
	for cur.Next(ctx) {
		var rec types.PostRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, &types.StorageError{Backend: "mongodb", Err: err}
		}
		out = append(out, &rec)
	}
	if err := cur.Err(); err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Err: err}
	}
	return out, nil
}

// Count implements Gateway.
func (g *MongoGateway) Count(ctx context.Context) (int64, error) {
	n, err := g.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, &types.StorageError{Backend: "mongodb", Err: err}
	}
	return n, nil
}

// DeleteAll implements Gateway.
func (g *MongoGateway) DeleteAll(ctx context.Context) error {
	if _, err := g.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return &types.StorageError{Backend: "mongodb", Err: err}
	}
	return nil
}

// Close implements Gateway.
func (g *MongoGateway) Close(ctx context.Context) error {
	disconnectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return g.client.Disconnect(disconnectCtx)
}
