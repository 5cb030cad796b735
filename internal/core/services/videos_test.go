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

package services_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jaycherian/go-video-insights/internal/cloud"
	"github.com/jaycherian/go-video-insights/internal/core/model"
	"github.com/jaycherian/go-video-insights/internal/core/services"
	"github.com/jaycherian/go-video-insights/internal/indexer"
	"github.com/jaycherian/go-video-insights/internal/store"
	test "github.com/jaycherian/go-video-insights/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	stub    *test.IndexerStub
	store   *store.SQLiteStore
	service *services.VideoService
}

func newFixture(t *testing.T, opts ...indexer.Option) *fixture {
	t.Helper()
	stub := test.NewIndexerStub(t)
	st := test.NewMemoryStore(t)
	clients := &cloud.ServiceClients{Indexer: stub.Client(opts...), Store: st}
	return &fixture{stub: stub, store: st, service: services.NewVideoService(clients)}
}

func clip(name string) *model.UploadRequest {
	return &model.UploadRequest{Filename: name, ContentType: "video/mp4", Body: strings.NewReader("not really an mp4")}
}

func TestUploadCreatesUploadedRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Upload(ctx, clip("a.mp4"))
	require.NoError(t, err)
	second, err := f.service.Upload(ctx, clip("a.mp4"))
	require.NoError(t, err)

	for _, r := range []*model.VideoRecord{first, second} {
		assert.Equal(t, model.StatusUploaded, r.Status)
		assert.NotEmpty(t, r.ExternalId)
		assert.NotEmpty(t, r.Key)
		assert.Equal(t, "a.mp4", r.Filename)
	}
	assert.NotEqual(t, first.ExternalId, second.ExternalId)
	assert.Equal(t, int32(2), f.stub.UploadCalls.Load())
	assert.Equal(t, int32(2), f.stub.TokenCalls.Load())
	assert.Len(t, f.service.List(ctx), 2)
}

func TestUploadWithoutFileMakesNoCalls(t *testing.T) {
	f := newFixture(t)

	for _, in := range []*model.UploadRequest{nil, {Filename: "a.mp4"}} {
		record, err := f.service.Upload(context.Background(), in)
		assert.Nil(t, record)
		assert.True(t, errors.Is(err, model.ErrClientInput))
	}
	assert.Equal(t, int32(0), f.stub.TokenCalls.Load())
	assert.Equal(t, int32(0), f.stub.UploadCalls.Load())
}

func TestUploadTokenTimeoutSkipsIngestion(t *testing.T) {
	f := newFixture(t, indexer.WithTimeouts(50*time.Millisecond, 0, 0))
	f.stub.TokenDelay = 500 * time.Millisecond

	_, err := f.service.Upload(context.Background(), clip("a.mp4"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrTransport))
	assert.Equal(t, int32(0), f.stub.UploadCalls.Load())
	assert.Empty(t, f.service.List(context.Background()))
}

func TestUploadRejectedSurfacesUpstreamStatus(t *testing.T) {
	f := newFixture(t)
	f.stub.UploadStatus = http.StatusBadRequest

	_, err := f.service.Upload(context.Background(), clip("a.mp4"))

	var failure *model.Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, model.KindUpstream, failure.Kind)
	assert.Equal(t, http.StatusBadRequest, failure.StatusCode)
	assert.Empty(t, f.service.List(context.Background()))
}

func TestUploadWithoutStoreSettingsFailsFast(t *testing.T) {
	stub := test.NewIndexerStub(t)
	ctx := context.Background()
	clients := &cloud.ServiceClients{
		Indexer: stub.Client(),
		Store:   cloud.OpenMetadataStore(ctx, cloud.MetadataStore{Driver: store.DriverMongo}),
	}
	service := services.NewVideoService(clients)

	record, err := service.Upload(ctx, clip("a.mp4"))

	assert.Nil(t, record)
	assert.True(t, errors.Is(err, model.ErrConfiguration))
	assert.False(t, errors.Is(err, model.ErrStore))
	assert.Equal(t, int32(0), stub.TokenCalls.Load())
	assert.Equal(t, int32(0), stub.UploadCalls.Load())
}

func TestUploadWithFailingStoreReportsStoreFailure(t *testing.T) {
	stub := test.NewIndexerStub(t)
	clients := &cloud.ServiceClients{Indexer: stub.Client(), Store: &store.Unavailable{Reason: "connection refused"}}
	service := services.NewVideoService(clients)

	_, err := service.Upload(context.Background(), clip("a.mp4"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrStore))
	assert.Equal(t, int32(1), stub.UploadCalls.Load())
	assert.Contains(t, err.Error(), stub.Uploads()[0].Id)
}

func TestFetchAnalysisIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record, err := f.service.Upload(ctx, clip("pets.mp4"))
	require.NoError(t, err)
	f.stub.SetPayload(record.ExternalId, test.GetTestIndexPayload())

	first, err := f.service.FetchAnalysis(ctx, record.ExternalId)
	require.NoError(t, err)
	second, err := f.service.FetchAnalysis(ctx, record.ExternalId)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"cat", "dog"}, first.Keywords)
	assert.Equal(t, []string{"Pets", model.MissingValuePlaceholder}, first.Topics)
	assert.Equal(t, record.ExternalId, first.ExternalId)
	assert.JSONEq(t, test.GetTestIndexPayload(), string(first.Raw))

	listing := f.service.List(ctx)
	require.Len(t, listing, 1)
	assert.Equal(t, model.StatusAnalyzed, listing[0].Status)
}

func TestFetchAnalysisFallsBackToSummarizedInsights(t *testing.T) {
	f := newFixture(t)
	f.stub.SetPayload("summarized", test.GetTestSummarizedPayload())

	summary, err := f.service.FetchAnalysis(context.Background(), "summarized")

	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, summary.Keywords)
	assert.Empty(t, summary.Topics)
}

func TestFetchAnalysisToleratesUnknownId(t *testing.T) {
	f := newFixture(t)

	summary, err := f.service.FetchAnalysis(context.Background(), "unknown-id")

	require.NoError(t, err)
	assert.Equal(t, "unknown-id", summary.ExternalId)
	assert.Empty(t, summary.Keywords)
	assert.Empty(t, summary.Topics)
	assert.Empty(t, f.service.List(context.Background()))
}

func TestFetchAnalysisFailureLeavesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record, err := f.service.Upload(ctx, clip("a.mp4"))
	require.NoError(t, err)
	f.stub.IndexStatus = http.StatusNotFound

	_, err = f.service.FetchAnalysis(ctx, record.ExternalId)

	assert.True(t, errors.Is(err, model.ErrUpstream))
	assert.Equal(t, model.StatusUploaded, f.service.List(ctx)[0].Status)
}

func TestFetchAnalysisRequiresId(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.FetchAnalysis(context.Background(), "  ")

	assert.True(t, errors.Is(err, model.ErrClientInput))
	assert.Equal(t, int32(0), f.stub.TokenCalls.Load())
}

func TestListIsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	t1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"v1", "v2", "v3"} {
		_, err := f.store.Insert(ctx, model.NewVideoRecord(id, id+".mp4", t1.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	listing := f.service.List(ctx)

	require.Len(t, listing, 3)
	assert.Equal(t, "v3", listing[0].ExternalId)
	assert.Equal(t, "v2", listing[1].ExternalId)
	assert.Equal(t, "v1", listing[2].ExternalId)
	assert.Equal(t, "2025-03-01 11:00:00 UTC", listing[0].UploadTime)
}

func TestListDegradesToEmpty(t *testing.T) {
	clients := &cloud.ServiceClients{
		Indexer: indexer.NewClient(indexer.Credentials{}),
		Store:   &store.Unavailable{Reason: "not configured"},
	}
	service := services.NewVideoService(clients)

	listing := service.List(context.Background())

	assert.NotNil(t, listing)
	assert.Empty(t, listing)
	assert.Equal(t, 0, service.Stats(context.Background()).Total)
}

func TestStatsCountsPerStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record, err := f.service.Upload(ctx, clip("a.mp4"))
	require.NoError(t, err)
	_, err = f.service.Upload(ctx, clip("b.mp4"))
	require.NoError(t, err)
	_, err = f.service.FetchAnalysis(ctx, record.ExternalId)
	require.NoError(t, err)

	stats := f.service.Stats(ctx)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[model.StatusUploaded])
	assert.Equal(t, 1, stats.ByStatus[model.StatusAnalyzed])
}
