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

// Package commands. This file defines the command that forwards an uploaded
// file to the analysis service.
//
// Logic Flow:
//  1. Read the *model.UploadRequest and the access token from the context.
//  2. When the client sent no usable content type, sniff the leading bytes of
//     the stream with filetype and use the detected MIME type for the part.
//  3. Stream the file to the ingestion endpoint.
//  4. Store the external id the service assigned under GetExternalIdParamName().
package commands

import (
	"bufio"
	"io"
	"log/slog"

	"github.com/h2non/filetype"
	"github.com/jaycherian/go-video-insights/internal/core/cor"
	"github.com/jaycherian/go-video-insights/internal/core/model"
)

// sniffLength is the number of leading bytes filetype needs to match any known type.
const sniffLength = 261

// VideoIngest uploads the request's file and yields the external id.
type VideoIngest struct {
	cor.BaseCommand
	ingester VideoIngester
}

// NewVideoIngest is the constructor for the VideoIngest command.
func NewVideoIngest(name string, ingester VideoIngester) *VideoIngest {
	out := &VideoIngest{BaseCommand: *cor.NewBaseCommand(name), ingester: ingester}
	out.InputParamName = GetUploadRequestParamName()
	out.OutputParamName = GetExternalIdParamName()
	return out
}

// IsExecutable requires both the upload request and an access token.
func (c *VideoIngest) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) && context.Get(GetAccessTokenParamName()) != nil
}

func (c *VideoIngest) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(*model.UploadRequest)
	token := context.Get(GetAccessTokenParamName()).(model.AccessToken)

	if in.Body == nil {
		c.Fail(context, model.NewFailure(model.KindClientInput, "no file provided", nil))
		return
	}
	req := withSniffedContentType(in)
	if req.ContentType != in.ContentType {
		slog.DebugContext(context.GetContext(), "detected upload content type",
			"filename", in.Filename, "content_type", req.ContentType)
	}

	externalId, err := c.ingester.Upload(context.GetContext(), token, req)
	if err != nil {
		c.Fail(context, err)
		return
	}
	c.Succeed(context, externalId)
}

// withSniffedContentType returns a copy of in whose ContentType is detected
// from the stream when the client did not supply a specific one. The copy's
// Body replays the sniffed bytes.
func withSniffedContentType(in *model.UploadRequest) *model.UploadRequest {
	out := *in
	if in.ContentType != "" && in.ContentType != "application/octet-stream" {
		return &out
	}
	br := bufio.NewReaderSize(in.Body, sniffLength)
	out.Body = br
	head, err := br.Peek(sniffLength)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return &out
	}
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		out.ContentType = kind.MIME.Value
	}
	return &out
}
