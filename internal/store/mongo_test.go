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

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/jaycherian/go-video-insights/internal/core/model"
	"github.com/jaycherian/go-video-insights/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// TestMongoStore runs the store against the driver's mock deployment, which
// answers each command with the next queued response.
func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert assigns object id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		s := store.NewMongoStoreFromCollection(mt.Coll)
		record := model.NewVideoRecord("abc", "a.mp4", time.Now())

		key, err := s.Insert(context.Background(), record)

		require.NoError(mt, err)
		assert.Len(mt, key, 24)
		assert.Equal(mt, key, record.Key)
	})

	mt.Run("insert failure is reported", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))
		s := store.NewMongoStoreFromCollection(mt.Coll)

		_, err := s.Insert(context.Background(), model.NewVideoRecord("abc", "a.mp4", time.Now()))

		assert.ErrorContains(mt, err, "insert video abc")
	})

	mt.Run("list decodes documents", func(mt *mtest.T) {
		newer, older := primitive.NewObjectID(), primitive.NewObjectID()
		t2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
		t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.videos", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: newer}, {Key: "video_id", Value: "v2"}, {Key: "filename", Value: "b.mp4"},
				{Key: "upload_date", Value: t2}, {Key: "status", Value: "Analyzed"},
			},
			bson.D{
				{Key: "_id", Value: older}, {Key: "video_id", Value: "v1"}, {Key: "filename", Value: "a.mp4"},
				{Key: "upload_date", Value: t1}, {Key: "status", Value: "Uploaded"},
			},
		))
		s := store.NewMongoStoreFromCollection(mt.Coll)

		records, err := s.List(context.Background())

		require.NoError(mt, err)
		require.Len(mt, records, 2)
		assert.Equal(mt, newer.Hex(), records[0].Key)
		assert.Equal(mt, "v2", records[0].ExternalId)
		assert.Equal(mt, model.StatusAnalyzed, records[0].Status)
		assert.True(mt, records[0].UploadTime.Equal(t2))
		assert.Equal(mt, "v1", records[1].ExternalId)
	})

	mt.Run("list failure is reported", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Message: "unauthorized"}))
		s := store.NewMongoStoreFromCollection(mt.Coll)

		_, err := s.List(context.Background())

		assert.Error(mt, err)
	})

	mt.Run("set status matched", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		s := store.NewMongoStoreFromCollection(mt.Coll)

		matched, err := s.SetStatus(context.Background(), "abc", model.StatusAnalyzed)

		require.NoError(mt, err)
		assert.True(mt, matched)
	})

	mt.Run("set status without match", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		s := store.NewMongoStoreFromCollection(mt.Coll)

		matched, err := s.SetStatus(context.Background(), "unknown-id", model.StatusAnalyzed)

		require.NoError(mt, err)
		assert.False(mt, matched)
	})

	mt.Run("invalid status never reaches the server", func(mt *mtest.T) {
		s := store.NewMongoStoreFromCollection(mt.Coll)

		_, err := s.SetStatus(context.Background(), "abc", model.Status("Failed"))

		assert.ErrorIs(mt, err, store.ErrInvalidStatus)
	})
}
