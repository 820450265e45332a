package docstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on MongoDB. The first path segment maps to a
// MongoDB collection and the remainder becomes the string _id, so one
// MongoDB collection holds an entire subtree ("carts" holds every user's
// cart lines). Subscriptions ride on change streams, which require a
// replica-set deployment.
type MongoStore struct {
	db *mongo.Database
}

func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{db: client.Database(database)}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func (s *MongoStore) Get(ctx context.Context, path string) (Document, error) {
	coll, key, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	var raw bson.M
	err = s.db.Collection(coll).FindOne(ctx, bson.M{"_id": key}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document %s: %w", path, err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Set(ctx context.Context, path string, fields Document) error {
	coll, key, err := splitPath(path)
	if err != nil {
		return err
	}

	opts := options.Replace().SetUpsert(true)
	_, err = s.db.Collection(coll).ReplaceOne(ctx, bson.M{"_id": key}, toBSON(key, fields), opts)
	if err != nil {
		return fmt.Errorf("failed to set document %s: %w", path, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, path string, fields Document) error {
	coll, key, err := splitPath(path)
	if err != nil {
		return err
	}

	res, err := s.db.Collection(coll).UpdateOne(ctx, bson.M{"_id": key}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("failed to update document %s: %w", path, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, path string) error {
	coll, key, err := splitPath(path)
	if err != nil {
		return err
	}

	res, err := s.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", path, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Add(ctx context.Context, collection string, fields Document) (string, error) {
	id := primitive.NewObjectID().Hex()
	if err := s.Set(ctx, collection+"/"+id, fields); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MongoStore) List(ctx context.Context, collection string) (map[string]Document, error) {
	coll, filter := collectionFilter(collection)

	cur, err := s.db.Collection(coll).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	out := make(map[string]Document)
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode document in %s: %w", collection, err)
		}
		id, _ := raw["_id"].(string)
		key := id
		if i := strings.LastIndex(id, "/"); i >= 0 {
			key = id[i+1:]
		}
		out[key] = fromBSON(raw)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collection %s: %w", collection, err)
	}
	return out, nil
}

func (s *MongoStore) Subscribe(collection string, fn func(map[string]Document, error)) (Subscription, error) {
	coll, _ := collectionFilter(collection)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := s.db.Collection(coll).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open change stream on %s: %w", collection, err)
	}

	sub := &mongoSub{cancel: cancel}
	go func() {
		defer stream.Close(context.Background())

		// Initial snapshot, then one per change event. Re-listing keeps the
		// wholesale-replace contract cheap to reason about.
		s.deliver(ctx, collection, fn)
		for stream.Next(ctx) {
			s.deliver(ctx, collection, fn)
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			fn(nil, fmt.Errorf("change stream on %s failed: %w", collection, err))
		}
	}()
	return sub, nil
}

func (s *MongoStore) deliver(ctx context.Context, collection string, fn func(map[string]Document, error)) {
	snapshot, err := s.List(ctx, collection)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("docstore: snapshot of %s failed: %v", collection, err)
			fn(nil, err)
		}
		return
	}
	fn(snapshot, nil)
}

type mongoSub struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (m *mongoSub) Unsubscribe() {
	m.once.Do(m.cancel)
}

// collectionFilter maps a collection path to the MongoDB collection plus an
// _id filter selecting its direct members.
func collectionFilter(collection string) (coll string, filter bson.M) {
	coll, rest, ok := strings.Cut(collection, "/")
	pattern := "^[^/]+$"
	if ok && rest != "" {
		pattern = "^" + regexp.QuoteMeta(rest) + "/[^/]+$"
	}
	return coll, bson.M{"_id": primitive.Regex{Pattern: pattern}}
}

func toBSON(key string, fields Document) bson.M {
	doc := bson.M{"_id": key}
	for k, v := range fields {
		doc[k] = v
	}
	return doc
}

func fromBSON(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		doc[k] = normalizeBSON(v)
	}
	return doc
}

// normalizeBSON rewrites driver-specific value types into the plain
// map/slice/time shapes Document accessors expect.
func normalizeBSON(v any) any {
	switch tv := v.(type) {
	case bson.M:
		out := make(Document, len(tv))
		for k, item := range tv {
			out[k] = normalizeBSON(item)
		}
		return out
	case bson.D:
		out := make(Document, len(tv))
		for _, e := range tv {
			out[e.Key] = normalizeBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = normalizeBSON(item)
		}
		return out
	case primitive.DateTime:
		return tv.Time()
	default:
		return v
	}
}
