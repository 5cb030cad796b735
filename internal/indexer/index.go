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
	"net/http"
	"net/url"

	"github.com/jaycherian/go-video-insights/internal/core/model"
)

// Index fetches the current analysis payload for a video. It does not wait for
// processing to finish; whatever the service holds now is returned.
//
// Outputs:
//   - json.RawMessage: The unmodified payload.
//   - error: A Transport failure on network errors or timeouts, or an Upstream
//     failure when the service answers with a non-200 status or a body that is
//     not JSON.
func (c *Client) Index(ctx context.Context, token model.AccessToken, externalId string) (json.RawMessage, error) {
	if err := c.creds.Validate(); err != nil {
		return nil, err
	}
	if externalId == "" {
		return nil, model.NewFailure(model.KindClientInput, "no video id provided", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.indexTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s/Accounts/%s/Videos/%s/Index?%s",
		c.baseURL,
		url.PathEscape(c.creds.Location),
		url.PathEscape(c.creds.AccountId),
		url.PathEscape(externalId),
		url.Values{"accessToken": {string(token)}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, model.NewFailure(model.KindConfiguration, "invalid index endpoint", err)
	}

	status, body, err := c.send(req, "index")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, model.NewFailure(model.KindUpstream, "index request was rejected", nil).
			WithUpstream(status, detail(body))
	}
	if !json.Valid(body) {
		return nil, model.NewFailure(model.KindUpstream, "index response is not JSON", nil).
			WithUpstream(status, detail(body))
	}
	return json.RawMessage(body), nil
}
