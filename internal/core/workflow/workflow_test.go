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

package workflow_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/jaycherian/go-video-insights/internal/cloud"
	"github.com/jaycherian/go-video-insights/internal/core/commands"
	"github.com/jaycherian/go-video-insights/internal/core/cor"
	"github.com/jaycherian/go-video-insights/internal/core/model"
	"github.com/jaycherian/go-video-insights/internal/core/workflow"
	"github.com/jaycherian/go-video-insights/internal/store"
	test "github.com/jaycherian/go-video-insights/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadContext(ctx context.Context, name string) cor.Context {
	chCtx := cor.NewContextWith(ctx)
	chCtx.Add(commands.GetUploadRequestParamName(), &model.UploadRequest{
		Filename: name,
		Body:     strings.NewReader("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom"),
	})
	return chCtx
}

func TestVideoUploadWorkflow(t *testing.T) {
	ctx, span := tracer.Start(context.Background(), "upload-workflow-test")
	defer span.End()
	clients, stub := newClients(t)
	wf := workflow.NewVideoUploadWorkflow(clients)

	chCtx := uploadContext(ctx, "clip.mp4")
	require.True(t, wf.IsExecutable(chCtx))
	wf.Execute(chCtx)

	require.NoError(t, chCtx.Err())
	record := chCtx.Get(commands.GetVideoRecordParamName()).(*model.VideoRecord)
	assert.Equal(t, model.StatusUploaded, record.Status)
	assert.Equal(t, stub.Uploads()[0].Id, record.ExternalId)
	assert.Equal(t, ctx, chCtx.GetContext())
	// The part type is detected from the leading bytes when the client sends none.
	assert.Equal(t, "video/mp4", stub.Uploads()[0].ContentType)
	logger.InfoContext(ctx, "uploaded", "external_id", record.ExternalId)
}

func TestVideoUploadWorkflowStopsOnTokenFailure(t *testing.T) {
	clients, stub := newClients(t)
	stub.TokenStatus = http.StatusUnauthorized
	wf := workflow.NewVideoUploadWorkflow(clients)

	chCtx := uploadContext(context.Background(), "clip.mp4")
	wf.Execute(chCtx)

	assert.True(t, errors.Is(chCtx.Err(), model.ErrAuth))
	assert.Equal(t, int32(0), stub.UploadCalls.Load())
	assert.Nil(t, chCtx.Get(commands.GetVideoRecordParamName()))
	records, err := clients.Store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestVideoUploadWorkflowNotExecutableWithoutRequest(t *testing.T) {
	clients, _ := newClients(t)
	wf := workflow.NewVideoUploadWorkflow(clients)

	assert.False(t, wf.IsExecutable(cor.NewContextWith(context.Background())))
	assert.False(t, wf.IsExecutable(cor.NewBaseContext()))
}

func TestVideoAnalysisWorkflow(t *testing.T) {
	ctx := context.Background()
	clients, stub := newClients(t)
	_, err := clients.Store.Insert(ctx, model.NewVideoRecord("stub-video", "pets.mp4", fixedTime))
	require.NoError(t, err)
	stub.SetPayload("stub-video", test.GetTestIndexPayload())
	wf := workflow.NewVideoAnalysisWorkflow(clients)

	chCtx := cor.NewContextWith(ctx)
	chCtx.Add(commands.GetExternalIdParamName(), "stub-video")
	require.True(t, wf.IsExecutable(chCtx))
	wf.Execute(chCtx)

	require.NoError(t, chCtx.Err())
	summary := chCtx.Get(commands.GetAnalysisSummaryParamName()).(*model.AnalysisSummary)
	assert.Equal(t, []string{"cat", "dog"}, summary.Keywords)
	assert.Nil(t, chCtx.Get(commands.GetStatusUpdateIssueParamName()))
	records, err := clients.Store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAnalyzed, records[0].Status)
}

func TestVideoAnalysisWorkflowReportsMismatch(t *testing.T) {
	clients, _ := newClients(t)
	wf := workflow.NewVideoAnalysisWorkflow(clients)

	chCtx := cor.NewContextWith(context.Background())
	chCtx.Add(commands.GetExternalIdParamName(), "unknown-id")
	wf.Execute(chCtx)

	require.NoError(t, chCtx.Err())
	assert.NotNil(t, chCtx.Get(commands.GetAnalysisSummaryParamName()))
	issue := chCtx.Get(commands.GetStatusUpdateIssueParamName()).(*model.Failure)
	assert.True(t, errors.Is(issue, model.ErrStoreMismatch))
}

func TestVideoAnalysisWorkflowToleratesStoreFailure(t *testing.T) {
	stub := test.NewIndexerStub(t)
	clients := &cloud.ServiceClients{Indexer: stub.Client(), Store: &store.Unavailable{Reason: "offline"}}
	wf := workflow.NewVideoAnalysisWorkflow(clients)

	chCtx := cor.NewContextWith(context.Background())
	chCtx.Add(commands.GetExternalIdParamName(), "any")
	wf.Execute(chCtx)

	require.NoError(t, chCtx.Err())
	assert.NotNil(t, chCtx.Get(commands.GetAnalysisSummaryParamName()))
	issue := chCtx.Get(commands.GetStatusUpdateIssueParamName()).(*model.Failure)
	assert.True(t, errors.Is(issue, model.ErrStore))
}

func TestVideoAnalysisWorkflowStopsOnIndexFailure(t *testing.T) {
	ctx := context.Background()
	clients, stub := newClients(t)
	_, err := clients.Store.Insert(ctx, model.NewVideoRecord("stub-video", "pets.mp4", fixedTime))
	require.NoError(t, err)
	stub.IndexStatus = http.StatusNotFound
	wf := workflow.NewVideoAnalysisWorkflow(clients)

	chCtx := cor.NewContextWith(ctx)
	chCtx.Add(commands.GetExternalIdParamName(), "stub-video")
	wf.Execute(chCtx)

	assert.True(t, errors.Is(chCtx.Err(), model.ErrUpstream))
	assert.Nil(t, chCtx.Get(commands.GetAnalysisSummaryParamName()))
	records, err := clients.Store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUploaded, records[0].Status)
}
