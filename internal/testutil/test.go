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

// Package test provides utility functions and mock data to support the application's
// test suite. It helps in setting up a consistent test environment, pointing the
// configuration loader at test files, and providing sample payloads and an
// in-memory metadata store for workflows and services.
package test

import (
	"context"
	"testing"

	"github.com/jaycherian/go-video-insights/internal/cloud"
	"github.com/jaycherian/go-video-insights/internal/store"
)

// GetTestIndexPayload returns an index payload in the nested shape, with
// keywords "cat" and "dog" and one topic lacking a name.
func GetTestIndexPayload() string {
	return `{
  "accountId": "stub-account",
  "id": "stub-video",
  "state": "Processed",
  "videos": [
    {
      "id": "stub-video",
      "state": "Processed",
      "insights": {
        "version": "1.0.0.0",
        "duration": "0:00:12.48",
        "keywords": [
          { "id": 1, "text": "cat", "confidence": 0.93, "language": "en-US" },
          { "id": 2, "text": "dog", "confidence": 0.88, "language": "en-US" }
        ],
        "topics": [
          { "id": 1, "name": "Pets", "referenceId": "Pets", "confidence": 0.71 },
          { "id": 2, "referenceId": "Animals/Mammals", "confidence": 0.52 }
        ]
      }
    }
  ]
}`
}

// GetTestSummarizedPayload returns an index payload without nested insights and
// with a single keyword in its summarizedInsights block.
func GetTestSummarizedPayload() string {
	return `{
  "accountId": "stub-account",
  "id": "stub-video",
  "state": "Processing",
  "summarizedInsights": {
    "name": "clip.mp4",
    "keywords": [ { "id": 1, "name": "solo", "text": "solo" } ],
    "topics": []
  },
  "videos": []
}`
}

// SetupOS points the configuration loader at dir with the given runtime. The
// variables are restored when the test ends.
func SetupOS(t *testing.T, dir string, runtime string) {
	t.Helper()
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, runtime)
}

// NewMemoryStore returns a SQLite store on a private in-memory database that is
// closed when the test ends.
func NewMemoryStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}
