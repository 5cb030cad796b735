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
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jaycherian/go-video-insights/internal/core/model"
)

// AccessToken exchanges the account credentials for a short-lived access
// token. Tokens are not cached; every caller acquires its own.
//
// Inputs:
//   - ctx: The request context. The call is additionally bounded by TokenTimeout.
//
// Outputs:
//   - model.AccessToken: The bare token, stripped of JSON quoting.
//   - error: A Configuration failure when settings are missing, a Transport
//     failure on network errors or timeouts, or an Auth failure when the
//     service refuses or answers with an empty token.
func (c *Client) AccessToken(ctx context.Context) (model.AccessToken, error) {
	if err := c.creds.Validate(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.tokenTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/Auth/%s/Accounts/%s/AccessToken?%s",
		c.baseURL,
		url.PathEscape(c.creds.Location),
		url.PathEscape(c.creds.AccountId),
		url.Values{"allowEdit": {"true"}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", model.NewFailure(model.KindConfiguration, "invalid token endpoint", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.creds.SubscriptionKey)

	status, body, err := c.send(req, "token")
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", model.NewFailure(model.KindAuth, "token request was refused", nil).
			WithUpstream(status, detail(body))
	}

	token := model.AccessToken(strings.TrimSpace(strings.ReplaceAll(string(body), `"`, "")))
	if token.IsZero() {
		return "", model.NewFailure(model.KindAuth, "token response was empty", nil).
			WithUpstream(status, "")
	}
	return token, nil
}
