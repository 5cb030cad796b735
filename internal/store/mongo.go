// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jaycherian/go-video-insights/internal/core/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

const (
	// DefaultCollection is the collection video documents are kept in.
	DefaultCollection = "videos"
	// ServerSelectionTimeout bounds how long any operation waits for a usable server.
	ServerSelectionTimeout = 5 * time.Second
)

// videoDocument is the stored shape of a VideoRecord.
type videoDocument struct {
	Id         primitive.ObjectID `bson:"_id"`
	VideoId    string             `bson:"video_id"`
	Filename   string             `bson:"filename"`
	UploadDate time.Time          `bson:"upload_date"`
	Status     string             `bson:"status"`
}

func (d *videoDocument) record() *model.VideoRecord {
	return &model.VideoRecord{
		Key:        d.Id.Hex(),
		ExternalId: d.VideoId,
		Filename:   d.Filename,
		UploadTime: d.UploadDate.UTC(),
		Status:     model.Status(d.Status),
	}
}

// MongoStore keeps VideoRecords as documents in a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to MongoDB and selects the collection. Connecting does
// not contact the server; call Ping to check reachability.
//
// Inputs:
//   - ctx: Context for the connect call.
//   - uri: The MongoDB connection string.
//   - database: The database name.
//   - collection: The collection name. Empty selects DefaultCollection.
//
// Outputs:
//   - *MongoStore: The store handle.
//   - error: An error when the connection string is invalid.
func NewMongoStore(ctx context.Context, uri string, database string, collection string) (*MongoStore, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(ServerSelectionTimeout).
		SetMonitor(otelmongo.NewMonitor())
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	return &MongoStore{client: client, collection: client.Database(database).Collection(collection)}, nil
}

// NewMongoStoreFromCollection wraps an existing collection handle. The store
// does not own the client and Close is a no-op.
func NewMongoStoreFromCollection(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

// Ping checks that the server is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.collection.Database().Client().Ping(ctx, readpref.Primary())
}

// Insert adds a new document for the record and returns its hex object id.
func (s *MongoStore) Insert(ctx context.Context, record *model.VideoRecord) (string, error) {
	if !record.Status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, record.Status)
	}
	doc := videoDocument{
		Id:         primitive.NewObjectID(),
		VideoId:    record.ExternalId,
		Filename:   record.Filename,
		UploadDate: record.UploadTime.UTC(),
		Status:     record.Status.String(),
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert video %s: %w", record.ExternalId, err)
	}
	record.Key = doc.Id.Hex()
	return record.Key, nil
}

// List returns all documents sorted by upload_date descending.
func (s *MongoStore) List(ctx context.Context) ([]*model.VideoRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "upload_date", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find videos: %w", err)
	}
	var docs []videoDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read videos: %w", err)
	}
	out := make([]*model.VideoRecord, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].record())
	}
	return out, nil
}

// SetStatus sets the status field of the document whose video_id matches.
func (s *MongoStore) SetStatus(ctx context.Context, externalId string, status model.Status) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	res, err := s.collection.UpdateOne(ctx,
		bson.D{{Key: "video_id", Value: externalId}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status.String()}}}})
	if err != nil {
		return false, fmt.Errorf("update video %s: %w", externalId, err)
	}
	return res.MatchedCount > 0, nil
}

// Close disconnects the client when the store owns it.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
