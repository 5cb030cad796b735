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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface, one per step of the video
// lifecycle:
//   - AcquireAccessToken: exchange the account credentials for a token.
//   - VideoIngest: forward the uploaded file to the analysis service.
//   - RecordRegister: create the VideoRecord for an accepted upload.
//   - VideoIndexFetch: fetch the current analysis payload for a video.
//   - InsightsExtract: derive the AnalysisSummary from the payload.
//   - RecordStatusUpdate: mark the video's record as analyzed.
//
// Commands exchange data through the cor.Context under the keys returned by
// the Get*ParamName functions in this file.
package commands

import (
	"context"
	"encoding/json"

	"github.com/jaycherian/go-video-insights/internal/core/model"
)

// GetUploadRequestParamName is the context key of the inbound *model.UploadRequest.
func GetUploadRequestParamName() string {
	return "__UPLOAD_REQUEST__"
}

// GetAccessTokenParamName is the context key of the model.AccessToken for this operation.
func GetAccessTokenParamName() string {
	return "__ACCESS_TOKEN__"
}

// GetExternalIdParamName is the context key of the external id (a string).
func GetExternalIdParamName() string {
	return "__EXTERNAL_ID__"
}

// GetVideoRecordParamName is the context key of the created *model.VideoRecord.
func GetVideoRecordParamName() string {
	return "__VIDEO_RECORD__"
}

// GetIndexPayloadParamName is the context key of the raw index payload (json.RawMessage).
func GetIndexPayloadParamName() string {
	return "__INDEX_PAYLOAD__"
}

// GetAnalysisSummaryParamName is the context key of the *model.AnalysisSummary.
func GetAnalysisSummaryParamName() string {
	return "__ANALYSIS_SUMMARY__"
}

// GetStatusUpdateIssueParamName is the context key of the *model.Failure
// describing a tolerated bookkeeping problem. Absent when the update matched.
func GetStatusUpdateIssueParamName() string {
	return "__STATUS_UPDATE_ISSUE__"
}

// TokenIssuer issues access tokens for the analysis service.
type TokenIssuer interface {
	AccessToken(ctx context.Context) (model.AccessToken, error)
}

// VideoIngester accepts video uploads and returns their external ids.
type VideoIngester interface {
	Upload(ctx context.Context, token model.AccessToken, in *model.UploadRequest) (string, error)
}

// IndexReader returns the current analysis payload of a video.
type IndexReader interface {
	Index(ctx context.Context, token model.AccessToken, externalId string) (json.RawMessage, error)
}
