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

package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/jaycherian/go-video-insights/internal/core/model"
)

// UploadFieldName is the multipart field the ingestion endpoint reads the file from.
const UploadFieldName = "file"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type uploadResponse struct {
	Id string `json:"id"`
}

// Upload streams the file to the ingestion endpoint as a private video and
// returns the identifier the service assigned to it.
//
// Inputs:
//   - ctx: The request context. The call is additionally bounded by UploadTimeout.
//   - token: An access token from AccessToken.
//   - in: The file to send. Its Filename is used both as the multipart file
//     name and as the video name.
//
// Outputs:
//   - string: The external id, never empty on success.
//   - error: A Transport failure on network errors or timeouts, or an Upstream
//     failure carrying the status and body when the service rejects the upload
//     or its answer does not name the new video.
func (c *Client) Upload(ctx context.Context, token model.AccessToken, in *model.UploadRequest) (string, error) {
	if err := c.creds.Validate(); err != nil {
		return "", err
	}
	if in == nil || in.Body == nil {
		return "", model.NewFailure(model.KindClientInput, "no file provided", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	query := url.Values{
		"accessToken": {string(token)},
		"name":        {in.Filename},
		"privacy":     {"Private"},
		"videoUrl":    {""},
	}
	endpoint := fmt.Sprintf("%s/%s/Accounts/%s/Videos?%s",
		c.baseURL,
		url.PathEscape(c.creds.Location),
		url.PathEscape(c.creds.AccountId),
		query.Encode())

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeFilePart(mw, in))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return "", model.NewFailure(model.KindConfiguration, "invalid ingestion endpoint", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	status, body, err := c.send(req, "upload")
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", model.NewFailure(model.KindUpstream, "video ingestion was rejected", nil).
			WithUpstream(status, detail(body))
	}

	var out uploadResponse
	if err := json.Unmarshal(body, &out); err != nil || out.Id == "" {
		return "", model.NewFailure(model.KindUpstream, "ingestion response did not carry a video id", err).
			WithUpstream(status, detail(body))
	}
	return out.Id, nil
}

// writeFilePart copies the file into a single multipart part and closes the
// multipart writer.
func writeFilePart(mw *multipart.Writer, in *model.UploadRequest) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		UploadFieldName, quoteEscaper.Replace(in.Filename)))
	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, in.Body); err != nil {
		return err
	}
	return mw.Close()
}
