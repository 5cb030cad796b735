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

// Package store holds the metadata store contract the video lifecycle relies on
// and its implementations:
//   - MongoStore: the primary store, one document per video in a collection.
//   - SQLiteStore: a local single-file (or in-memory) store.
//   - Unavailable: installed when no store could be opened; every call fails.
//
// A store handle is created once at process start and passed explicitly to every
// operation that needs it. Implementations are safe for concurrent use.
package store

import (
	"context"
	"errors"

	"github.com/jaycherian/go-video-insights/internal/core/model"
)

// MetadataStore is the narrow set of operations performed on VideoRecords.
type MetadataStore interface {
	// Insert persists a new record and returns the key the store assigned to it.
	// The record's Key field is set as well.
	Insert(ctx context.Context, record *model.VideoRecord) (string, error)

	// List returns every record ordered by upload time, most recent first.
	List(ctx context.Context) ([]*model.VideoRecord, error)

	// SetStatus overwrites the status of the record with the given external id.
	// It reports whether a record matched; a missing match is not an error.
	SetStatus(ctx context.Context, externalId string, status model.Status) (bool, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// Supported values for the metadata_store.driver setting.
const (
	DriverMongo  = "mongodb"
	DriverSQLite = "sqlite"
)

// ErrInvalidStatus is returned when asked to persist a status outside the known set.
var ErrInvalidStatus = errors.New("invalid video status")

// ErrNotConfigured marks a store that could not be opened because its settings
// are missing or invalid, as opposed to one that failed to connect.
var ErrNotConfigured = errors.New("metadata store is not configured")

// IsConfigured reports whether s was opened from usable settings. Only an
// Unavailable installed for missing settings is not configured.
func IsConfigured(s MetadataStore) bool {
	if u, ok := s.(*Unavailable); ok {
		return !u.Unconfigured
	}
	return s != nil
}
