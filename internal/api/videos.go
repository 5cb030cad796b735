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

// Package api contains the HTTP route definitions for the server. This file
// maps the video lifecycle operations onto gin handlers.
//
// Routes:
//   - POST /api/v1/videos: multipart upload, file in the "video" field.
//   - GET  /api/v1/videos: every recorded video, newest first.
//   - GET  /api/v1/videos/:id/analysis: normalized analysis of one video.
//   - POST /upload and GET /result/:video_id: the same operations under their
//     original paths.
//
// Failures are rendered as {"error", "details"?, "status_code"?} with 400 for
// client input and 500 for everything else.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/go-video-insights/internal/core/model"
	"github.com/jaycherian/go-video-insights/internal/core/services"
)

// UploadFieldName is the multipart field the file is read from.
const UploadFieldName = "video"

// VideoOperations is what the handlers need from the service layer.
type VideoOperations interface {
	Upload(ctx context.Context, in *model.UploadRequest) (*model.VideoRecord, error)
	List(ctx context.Context) []model.VideoListing
	FetchAnalysis(ctx context.Context, externalId string) (*model.AnalysisSummary, error)
	Stats(ctx context.Context) services.Stats
}

// VideoRouter registers the versioned video routes under r.
func VideoRouter(r *gin.RouterGroup, videos VideoOperations) {
	group := r.Group("/videos")
	{
		group.POST("", uploadHandler(videos))
		group.GET("", listHandler(videos))
		group.GET("/:id/analysis", analysisHandler(videos, "id"))
	}
}

// LegacyRouter registers the unversioned upload and result routes.
func LegacyRouter(r gin.IRouter, videos VideoOperations) {
	r.POST("/upload", uploadHandler(videos))
	r.GET("/result/:video_id", analysisHandler(videos, "video_id"))
}

func uploadHandler(videos VideoOperations) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile(UploadFieldName)
		if err != nil {
			writeFailure(c, model.NewFailure(model.KindClientInput, "no file provided", err))
			return
		}
		file, err := header.Open()
		if err != nil {
			writeFailure(c, model.NewFailure(model.KindClientInput, "uploaded file could not be read", err))
			return
		}
		defer file.Close()

		record, err := videos.Upload(c.Request.Context(), &model.UploadRequest{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		})
		if err != nil {
			writeFailure(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"external_id": record.ExternalId,
			"message":     "Video uploaded successfully",
		})
	}
}

func listHandler(videos VideoOperations) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, videos.List(c.Request.Context()))
	}
}

func analysisHandler(videos VideoOperations, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := videos.FetchAnalysis(c.Request.Context(), c.Param(param))
		if err != nil {
			writeFailure(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func writeFailure(c *gin.Context, err error) {
	f := model.AsFailure(err, model.KindUpstream)
	message := f.Message
	if message == "" {
		message = f.Error()
	}
	body := gin.H{"error": message}
	if f.Details != "" {
		body["details"] = f.Details
	}
	if f.StatusCode != 0 {
		body["status_code"] = f.StatusCode
	}
	c.JSON(f.HTTPStatus(), body)
}
