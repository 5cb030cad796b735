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

// Package services contains the business logic the presentation layer calls.
// This file, `videos.go`, defines the VideoService, which exposes the three
// operations of the video lifecycle:
//   - Upload: forward a file to the analysis service and record it.
//   - List: every recorded video, newest first.
//   - FetchAnalysis: the normalized analysis of one video.
//
// Each operation runs its own chain with its own context, so concurrent calls
// share nothing but the clients. Every error returned is a *model.Failure.
package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jaycherian/go-video-insights/internal/cloud"
	"github.com/jaycherian/go-video-insights/internal/core/commands"
	"github.com/jaycherian/go-video-insights/internal/core/cor"
	"github.com/jaycherian/go-video-insights/internal/core/model"
	"github.com/jaycherian/go-video-insights/internal/core/workflow"
	"github.com/jaycherian/go-video-insights/internal/store"
)

// VideoService is the entry point for the video lifecycle operations.
type VideoService struct {
	Store    store.MetadataStore // Read directly by List and Stats.
	upload   cor.Command
	analysis cor.Command
}

// Stats is the number of recorded videos, in total and per status.
type Stats struct {
	Total    int                  `json:"total"`
	ByStatus map[model.Status]int `json:"by_status"`
}

// NewVideoService builds the upload and analysis workflows on the given clients.
func NewVideoService(serviceClients *cloud.ServiceClients) *VideoService {
	return &VideoService{
		Store:    serviceClients.Store,
		upload:   workflow.NewVideoUploadWorkflow(serviceClients),
		analysis: workflow.NewVideoAnalysisWorkflow(serviceClients),
	}
}

// Upload forwards the file to the analysis service and inserts its record.
//
// Inputs:
//   - ctx: The request context.
//   - in: The uploaded file. A nil request or body is rejected before any network
//     call, and so is any upload while the metadata store is not configured.
//
// Outputs:
//   - *model.VideoRecord: The created record, in the Uploaded state.
//   - error: A *model.Failure describing the step that failed.
func (s *VideoService) Upload(ctx context.Context, in *model.UploadRequest) (*model.VideoRecord, error) {
	if in == nil || in.Body == nil {
		f := model.NewFailure(model.KindClientInput, "no file provided", nil)
		logFailure(ctx, "upload", f)
		return nil, f
	}
	// Without a usable store the remote video could never be recorded.
	if !store.IsConfigured(s.Store) {
		f := model.NewFailure(model.KindConfiguration, "metadata store is not configured", nil)
		logFailure(ctx, "upload", f, "filename", in.Filename)
		return nil, f
	}

	chCtx := cor.NewContextWith(ctx)
	chCtx.Add(commands.GetUploadRequestParamName(), in)
	s.upload.Execute(chCtx)

	if err := chCtx.Err(); err != nil {
		f := model.AsFailure(err, model.KindUpstream)
		logFailure(ctx, "upload", f, "filename", in.Filename)
		return nil, f
	}
	record, ok := chCtx.Get(commands.GetVideoRecordParamName()).(*model.VideoRecord)
	if !ok {
		f := model.NewFailure(model.KindUpstream, "upload produced no record", nil)
		logFailure(ctx, "upload", f, "filename", in.Filename)
		return nil, f
	}
	slog.InfoContext(ctx, "video uploaded", "external_id", record.ExternalId, "filename", record.Filename)
	return record, nil
}

// List returns every record newest first, rendered for display. It never
// fails: when the store cannot be read the listing is empty.
func (s *VideoService) List(ctx context.Context) []model.VideoListing {
	out := make([]model.VideoListing, 0)
	records, err := s.Store.List(ctx)
	if err != nil {
		slog.WarnContext(ctx, "video listing unavailable", "error", err)
		return out
	}
	for _, r := range records {
		out = append(out, r.Listing())
	}
	return out
}

// FetchAnalysis fetches and normalizes the current analysis of a video and
// marks its record as analyzed. The summary is returned whether or not a
// record matched.
//
// Inputs:
//   - ctx: The request context.
//   - externalId: The id the analysis service assigned at upload.
//
// Outputs:
//   - *model.AnalysisSummary: Keywords, topics and the raw payload.
//   - error: A *model.Failure when the token or the payload could not be obtained.
func (s *VideoService) FetchAnalysis(ctx context.Context, externalId string) (*model.AnalysisSummary, error) {
	externalId = strings.TrimSpace(externalId)
	if externalId == "" {
		f := model.NewFailure(model.KindClientInput, "no video id provided", nil)
		logFailure(ctx, "fetch_analysis", f)
		return nil, f
	}

	chCtx := cor.NewContextWith(ctx)
	chCtx.Add(commands.GetExternalIdParamName(), externalId)
	s.analysis.Execute(chCtx)

	if err := chCtx.Err(); err != nil {
		f := model.AsFailure(err, model.KindUpstream)
		logFailure(ctx, "fetch_analysis", f, "external_id", externalId)
		return nil, f
	}
	summary, ok := chCtx.Get(commands.GetAnalysisSummaryParamName()).(*model.AnalysisSummary)
	if !ok {
		f := model.NewFailure(model.KindUpstream, "analysis produced no summary", nil)
		logFailure(ctx, "fetch_analysis", f, "external_id", externalId)
		return nil, f
	}
	return summary, nil
}

// Stats counts the listed records per status. Every known status is present,
// with zero when no record has it.
func (s *VideoService) Stats(ctx context.Context) Stats {
	out := Stats{ByStatus: map[model.Status]int{
		model.StatusUploaded: 0,
		model.StatusAnalyzed: 0,
	}}
	for _, v := range s.List(ctx) {
		out.Total++
		out.ByStatus[v.Status]++
	}
	return out
}

func logFailure(ctx context.Context, op string, f *model.Failure, args ...any) {
	args = append(args, "operation", op, "kind", f.Kind, "error", f.Error())
	if f.StatusCode != 0 {
		args = append(args, "status_code", f.StatusCode)
	}
	if f.Kind == model.KindClientInput {
		slog.InfoContext(ctx, "operation rejected", args...)
		return
	}
	slog.ErrorContext(ctx, "operation failed", args...)
}
