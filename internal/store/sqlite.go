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
	"database/sql"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
	"github.com/jaycherian/go-video-insights/internal/core/model"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS videos (
	id          TEXT PRIMARY KEY,
	video_id    TEXT NOT NULL UNIQUE,
	filename    TEXT NOT NULL,
	upload_date INTEGER NOT NULL,
	status      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS videos_upload_date ON videos (upload_date DESC);
`

// videoRow is a row of the videos table. upload_date is unix nanoseconds.
type videoRow struct {
	Id         string `db:"id"`
	VideoId    string `db:"video_id"`
	Filename   string `db:"filename"`
	UploadDate int64  `db:"upload_date"`
	Status     string `db:"status"`
}

// SQLiteStore keeps VideoRecords in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dsn and ensures the
// schema exists. ":memory:" gives a private database that lives as long as the store.
func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Insert adds a row for the record under a fresh uuid key.
func (s *SQLiteStore) Insert(ctx context.Context, record *model.VideoRecord) (string, error) {
	if !record.Status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, record.Status)
	}
	key := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO videos (id, video_id, filename, upload_date, status) VALUES (?, ?, ?, ?, ?)`,
		key, record.ExternalId, record.Filename, record.UploadTime.UTC().UnixNano(), record.Status.String())
	if err != nil {
		return "", fmt.Errorf("insert video %s: %w", record.ExternalId, err)
	}
	record.Key = key
	return key, nil
}

// List returns every row, newest first. Rows with equal times keep reverse
// insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]*model.VideoRecord, error) {
	var rows []*videoRow
	err := sqlscan.Select(ctx, s.db, &rows,
		`SELECT id, video_id, filename, upload_date, status FROM videos ORDER BY upload_date DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	out := make([]*model.VideoRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, &model.VideoRecord{
			Key:        r.Id,
			ExternalId: r.VideoId,
			Filename:   r.Filename,
			UploadTime: time.Unix(0, r.UploadDate).UTC(),
			Status:     model.Status(r.Status),
		})
	}
	return out, nil
}

// SetStatus updates the row whose video_id matches.
func (s *SQLiteStore) SetStatus(ctx context.Context, externalId string, status model.Status) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE videos SET status = ? WHERE video_id = ?`, status.String(), externalId)
	if err != nil {
		return false, fmt.Errorf("update video %s: %w", externalId, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update video %s: %w", externalId, err)
	}
	return n > 0, nil
}

// Close closes the database.
func (s *SQLiteStore) Close(context.Context) error {
	return s.db.Close()
}
