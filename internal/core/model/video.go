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

// Package model defines the data structures for the application. This file,
// `video.go`, holds the persistent lifecycle record for a submitted video and
// the closed set of states that record can be in.
//
// A VideoRecord is created exactly once, when the external analysis service
// accepts an upload, and afterwards only its status changes. The external id is
// the join key between the metadata store and the external service; the store
// key is assigned by the store and never leaves this process except as a
// display string.
package model

import (
	"io"
	"time"
)

// ListingTimeFormat is the fixed layout used when rendering upload times for display.
const ListingTimeFormat = "2006-01-02 15:04:05 UTC"

// Status is the lifecycle state of a VideoRecord.
type Status string

const (
	// StatusUploaded is the initial state, set when the record is created.
	StatusUploaded Status = "Uploaded"
	// StatusAnalyzed is terminal. It is (re)set every time analysis results
	// are retrieved for the video.
	StatusAnalyzed Status = "Analyzed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusUploaded, StatusAnalyzed:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// AccessToken is a short-lived bearer credential for the external analysis
// service. It is never cached; each operation acquires its own.
type AccessToken string

// IsZero reports whether the token is empty and therefore unusable.
func (t AccessToken) IsZero() bool {
	return len(t) == 0
}

// VideoRecord is the durable entity representing one submitted video.
type VideoRecord struct {
	Key        string    // Store-assigned key. Opaque, used only for store addressing.
	ExternalId string    // Identifier assigned by the external analysis service.
	Filename   string    // The originally submitted file name, stored verbatim.
	UploadTime time.Time // UTC creation time, used only for ordering.
	Status     Status    // Current lifecycle state.
}

// NewVideoRecord creates a record in the initial Uploaded state.
//
// Inputs:
//   - externalId: The identifier returned by the external service for the upload.
//   - filename: The name the client submitted the file under.
//   - now: The creation time. It is normalized to UTC.
//
// Outputs:
//   - *VideoRecord: The new record. Its Key is empty until the store assigns one.
func NewVideoRecord(externalId string, filename string, now time.Time) *VideoRecord {
	return &VideoRecord{
		ExternalId: externalId,
		Filename:   filename,
		UploadTime: now.UTC(),
		Status:     StatusUploaded,
	}
}

// VideoListing is the display form of a VideoRecord returned by the List operation.
type VideoListing struct {
	Id         string `json:"id"`
	ExternalId string `json:"external_id"`
	Filename   string `json:"filename"`
	UploadTime string `json:"upload_time"`
	Status     Status `json:"status"`
}

// Listing renders the record for display, formatting the upload time with ListingTimeFormat.
func (v *VideoRecord) Listing() VideoListing {
	return VideoListing{
		Id:         v.Key,
		ExternalId: v.ExternalId,
		Filename:   v.Filename,
		UploadTime: v.UploadTime.UTC().Format(ListingTimeFormat),
		Status:     v.Status,
	}
}

// UploadRequest is the inbound file payload for the Submit operation.
type UploadRequest struct {
	Filename    string    // Client supplied file name.
	ContentType string    // Client supplied MIME type, may be empty.
	Body        io.Reader // The file stream. Nil means no file was provided.
}
