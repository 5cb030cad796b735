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

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/go-video-insights/internal/api"
	"github.com/jaycherian/go-video-insights/internal/cloud"
	"github.com/jaycherian/go-video-insights/internal/core/model"
	"github.com/jaycherian/go-video-insights/internal/core/services"
	test "github.com/jaycherian/go-video-insights/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, videos api.VideoOperations) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/api/v1")
	api.VideoRouter(v1, videos)
	api.Dashboard(v1, videos)
	api.LegacyRouter(r, videos)
	api.Health(r)
	return r
}

func newStubbedRouter(t *testing.T) (*gin.Engine, *test.IndexerStub) {
	t.Helper()
	stub := test.NewIndexerStub(t)
	clients := &cloud.ServiceClients{Indexer: stub.Client(), Store: test.NewMemoryStore(t)}
	return newRouter(t, services.NewVideoService(clients)), stub
}

func multipartRequest(t *testing.T, path string, field string, filename string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("not really an mp4"))
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestUploadRoute(t *testing.T) {
	r, stub := newStubbedRouter(t)

	w, body := serve(r, multipartRequest(t, "/api/v1/videos", api.UploadFieldName, "clip.mp4"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["external_id"])
	assert.Equal(t, "Video uploaded successfully", body["message"])
	require.Len(t, stub.Uploads(), 1)
	assert.Equal(t, "clip.mp4", stub.Uploads()[0].Name)
}

func TestLegacyUploadRoute(t *testing.T) {
	r, _ := newStubbedRouter(t)

	w, body := serve(r, multipartRequest(t, "/upload", api.UploadFieldName, "clip.mp4"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["external_id"])
}

func TestUploadRouteWithoutFile(t *testing.T) {
	r, stub := newStubbedRouter(t)

	w, body := serve(r, multipartRequest(t, "/api/v1/videos", "", ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no file provided", body["error"])
	assert.Equal(t, int32(0), stub.TokenCalls.Load())
}

func TestUploadRouteNotMultipart(t *testing.T) {
	r, stub := newStubbedRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(`{"video":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	w, _ := serve(r, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), stub.TokenCalls.Load())
}

func TestUploadRouteRejectedUpstream(t *testing.T) {
	r, stub := newStubbedRouter(t)
	stub.UploadStatus = http.StatusBadRequest

	w, body := serve(r, multipartRequest(t, "/api/v1/videos", api.UploadFieldName, "clip.mp4"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, float64(http.StatusBadRequest), body["status_code"])
	assert.NotEmpty(t, body["details"])
}

func TestListAndAnalysisRoutes(t *testing.T) {
	r, stub := newStubbedRouter(t)
	_, uploaded := serve(r, multipartRequest(t, "/api/v1/videos", api.UploadFieldName, "pets.mp4"))
	id := uploaded["external_id"].(string)
	stub.SetPayload(id, test.GetTestIndexPayload())

	for _, path := range []string{"/api/v1/videos/" + id + "/analysis", "/result/" + id} {
		w, body := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, id, body["external_id"])
		assert.Equal(t, []any{"cat", "dog"}, body["keywords"])
		assert.Equal(t, []any{"Pets", model.MissingValuePlaceholder}, body["topics"])
		assert.NotNil(t, body["raw"])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var listing []model.VideoListing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing, 1)
	assert.Equal(t, id, listing[0].ExternalId)
	assert.Equal(t, "pets.mp4", listing[0].Filename)
	assert.Equal(t, model.StatusAnalyzed, listing[0].Status)
}

func TestAnalysisRouteUpstreamFailure(t *testing.T) {
	r, stub := newStubbedRouter(t)
	stub.IndexStatus = http.StatusNotFound

	w, body := serve(r, httptest.NewRequest(http.MethodGet, "/result/missing", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, float64(http.StatusNotFound), body["status_code"])
}

func TestStatsAndHealthRoutes(t *testing.T) {
	r, _ := newStubbedRouter(t)
	serve(r, multipartRequest(t, "/api/v1/videos", api.UploadFieldName, "a.mp4"))

	w, body := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, map[string]any{"Uploaded": float64(1), "Analyzed": float64(0)}, body["by_status"])

	w, body = serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

type failingVideos struct{}

func (failingVideos) Upload(context.Context, *model.UploadRequest) (*model.VideoRecord, error) {
	return nil, errors.New("boom")
}

func (failingVideos) List(context.Context) []model.VideoListing {
	return []model.VideoListing{}
}

func (failingVideos) FetchAnalysis(context.Context, string) (*model.AnalysisSummary, error) {
	return nil, model.NewFailure(model.KindConfiguration, "video indexer is not configured", nil)
}

func (failingVideos) Stats(context.Context) services.Stats {
	return services.Stats{}
}

func TestFailureRendering(t *testing.T) {
	r := newRouter(t, failingVideos{})

	w, body := serve(r, multipartRequest(t, "/upload", api.UploadFieldName, "a.mp4"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Upstream failure: boom", body["error"])
	assert.Equal(t, "boom", body["details"])
	assert.NotContains(t, body, "status_code")

	w, body = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/videos/x/analysis", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "video indexer is not configured", body["error"])
	assert.NotContains(t, body, "details")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
