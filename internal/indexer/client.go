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

// Package indexer is the client for the external video analysis service. It
// covers the three calls the application makes against the service:
//   - token issuance (see token.go), the credential provider for every other call.
//   - video ingestion (see upload.go).
//   - index retrieval (see index.go).
//
// Every call carries its own fixed timeout, is issued exactly once and never
// retried. Failures are returned as *model.Failure values so that callers can
// classify them with errors.Is against the model sentinels.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jaycherian/go-video-insights/internal/core/model"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.videoindexer.ai"

	TokenTimeout  = 10 * time.Second // Bound for the token issuance call.
	UploadTimeout = 30 * time.Second // Bound for the video ingestion call.
	IndexTimeout  = 20 * time.Second // Bound for the index retrieval call.

	// maxBodyBytes caps how much of any response body is read into memory.
	maxBodyBytes = 64 << 20
	// maxDetailBytes caps the upstream body carried on a Failure.
	maxDetailBytes = 4 << 10
)

// Client talks to the external analysis service on behalf of one account.
// It holds no per-request state and is safe for concurrent use.
type Client struct {
	creds      Credentials
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter

	tokenTimeout  time.Duration
	uploadTimeout time.Duration
	indexTimeout  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client, e.g. with one whose
// transport is instrumented.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL points the client at a different service root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithRateLimit bounds outbound calls to requestsPerSecond, with a burst of
// the same size. Waiting for the limiter counts against the call's timeout.
// Zero or negative values disable limiting.
func WithRateLimit(requestsPerSecond int) Option {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeouts overrides the per-call bounds. Zero values keep the defaults.
func WithTimeouts(token, upload, index time.Duration) Option {
	return func(c *Client) {
		if token > 0 {
			c.tokenTimeout = token
		}
		if upload > 0 {
			c.uploadTimeout = upload
		}
		if index > 0 {
			c.indexTimeout = index
		}
	}
}

// NewClient creates a Client for the given account credentials. The
// credentials are not validated here; each call validates them before issuing
// any request.
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:         creds,
		baseURL:       DefaultBaseURL,
		httpClient:    http.DefaultClient,
		tokenTimeout:  TokenTimeout,
		uploadTimeout: UploadTimeout,
		indexTimeout:  IndexTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Credentials returns the account settings the client was built with.
func (c *Client) Credentials() Credentials {
	return c.creds
}

// send issues req once and returns the status code and the (capped) body.
// Only transport-level problems are returned as errors; any HTTP status is
// handed back to the caller for classification.
func (c *Client) send(req *http.Request, op string) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return 0, nil, transportFailure(op, err)
		}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, transportFailure(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, transportFailure(op, err)
	}
	return resp.StatusCode, body, nil
}

// transportFailure classifies a network-level error, calling out timeouts.
func transportFailure(op string, err error) *model.Failure {
	if isTimeout(err) {
		return model.NewFailure(model.KindTransport, fmt.Sprintf("%s timed out", op), err)
	}
	return model.NewFailure(model.KindTransport, fmt.Sprintf("%s request failed", op), err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// detail trims an upstream body for inclusion in a Failure.
func detail(body []byte) string {
	if len(body) > maxDetailBytes {
		body = body[:maxDetailBytes]
	}
	return strings.TrimSpace(string(body))
}
