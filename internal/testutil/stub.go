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

package test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jaycherian/go-video-insights/internal/indexer"
)

// Stub account settings accepted by IndexerStub.
const (
	StubSubscriptionKey = "stub-key"
	StubLocation        = "trial"
	StubAccountId       = "stub-account"
)

// StubUpload records what the stub received on one ingestion call.
type StubUpload struct {
	Id          string
	Name        string // The name query parameter.
	Privacy     string
	Filename    string // The multipart file name.
	ContentType string // The multipart part type.
	Content     []byte
}

// IndexerStub is an httptest server implementing the token, ingestion and
// index endpoints of the external analysis service. Its fields may be set
// before the first request to shape the responses.
type IndexerStub struct {
	Server *httptest.Server

	TokenDelay   time.Duration // Delay before answering a token request.
	TokenStatus  int           // Non-zero replaces the 200 token answer.
	TokenBody    *string       // Non-nil replaces the quoted token body.
	UploadStatus int           // Non-zero replaces the 200 ingestion answer.
	UploadBody   string        // Non-empty replaces the {"id": ...} ingestion body.
	IndexStatus  int           // Non-zero replaces the 200 index answer.

	// DefaultPayload is served for ids without an entry in Payloads.
	DefaultPayload string

	TokenCalls  atomic.Int32
	UploadCalls atomic.Int32
	IndexCalls  atomic.Int32

	mu       sync.Mutex
	payloads map[string]string
	uploads  []StubUpload
	issued   map[string]bool
}

// NewIndexerStub starts the stub. It is shut down when the test ends.
func NewIndexerStub(t *testing.T) *IndexerStub {
	t.Helper()
	s := &IndexerStub{
		DefaultPayload: `{}`,
		payloads:       make(map[string]string),
		issued:         make(map[string]bool),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /Auth/{location}/Accounts/{account}/AccessToken", s.handleToken)
	mux.HandleFunc("POST /{location}/Accounts/{account}/Videos", s.handleUpload)
	mux.HandleFunc("GET /{location}/Accounts/{account}/Videos/{id}/Index", s.handleIndex)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Server.Close)
	return s
}

// Credentials returns account settings the stub accepts.
func (s *IndexerStub) Credentials() indexer.Credentials {
	return indexer.Credentials{
		SubscriptionKey: StubSubscriptionKey,
		Location:        StubLocation,
		AccountId:       StubAccountId,
	}
}

// Client returns an indexer client pointed at the stub.
func (s *IndexerStub) Client(opts ...indexer.Option) *indexer.Client {
	opts = append([]indexer.Option{
		indexer.WithBaseURL(s.Server.URL),
		indexer.WithHTTPClient(s.Server.Client()),
	}, opts...)
	return indexer.NewClient(s.Credentials(), opts...)
}

// SetPayload registers the index payload served for id.
func (s *IndexerStub) SetPayload(id string, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[id] = payload
}

// Uploads returns the ingestion calls received so far.
func (s *IndexerStub) Uploads() []StubUpload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StubUpload(nil), s.uploads...)
}

func (s *IndexerStub) accountMatches(r *http.Request) bool {
	return r.PathValue("location") == StubLocation && r.PathValue("account") == StubAccountId
}

func (s *IndexerStub) tokenValid(r *http.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued[r.URL.Query().Get("accessToken")]
}

func (s *IndexerStub) handleToken(w http.ResponseWriter, r *http.Request) {
	n := s.TokenCalls.Add(1)
	if s.TokenDelay > 0 {
		select {
		case <-time.After(s.TokenDelay):
		case <-r.Context().Done():
			return
		}
	}
	if s.TokenStatus != 0 {
		http.Error(w, "token refused", s.TokenStatus)
		return
	}
	if r.Header.Get("Ocp-Apim-Subscription-Key") != StubSubscriptionKey || !s.accountMatches(r) {
		http.Error(w, `{"ErrorType":"USER_NOT_ALLOWED"}`, http.StatusUnauthorized)
		return
	}
	if s.TokenBody != nil {
		_, _ = io.WriteString(w, *s.TokenBody)
		return
	}
	token := fmt.Sprintf("stub-token-%d", n)
	s.mu.Lock()
	s.issued[token] = true
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, "%q", token)
}

func (s *IndexerStub) handleUpload(w http.ResponseWriter, r *http.Request) {
	s.UploadCalls.Add(1)
	if !s.accountMatches(r) || !s.tokenValid(r) {
		http.Error(w, `{"ErrorType":"UNAUTHORIZED"}`, http.StatusUnauthorized)
		return
	}
	if s.UploadStatus != 0 {
		http.Error(w, `{"ErrorType":"INVALID_INPUT"}`, s.UploadStatus)
		return
	}
	file, header, err := r.FormFile(indexer.UploadFieldName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	s.mu.Lock()
	s.uploads = append(s.uploads, StubUpload{
		Id:          id,
		Name:        r.URL.Query().Get("name"),
		Privacy:     r.URL.Query().Get("privacy"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	})
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if s.UploadBody != "" {
		_, _ = io.WriteString(w, s.UploadBody)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "state": "Uploaded"})
}

func (s *IndexerStub) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.IndexCalls.Add(1)
	if !s.accountMatches(r) || !s.tokenValid(r) {
		http.Error(w, `{"ErrorType":"UNAUTHORIZED"}`, http.StatusUnauthorized)
		return
	}
	if s.IndexStatus != 0 {
		http.Error(w, `{"ErrorType":"VIDEO_NOT_FOUND"}`, s.IndexStatus)
		return
	}
	s.mu.Lock()
	payload, ok := s.payloads[r.PathValue("id")]
	s.mu.Unlock()
	if !ok {
		payload = s.DefaultPayload
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, payload)
}
