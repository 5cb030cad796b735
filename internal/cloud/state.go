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

// Package cloud. This file builds the process-wide clients from the
// configuration. It acts as a dependency injection container: a single
// `ServiceClients` value is created at startup and handed to the workflows
// and services, so no component reaches for a global connection.
//
// Logic Flow:
//  1. `NewServiceClients` is called once at application startup.
//  2. It creates an HTTP client whose transport is traced with otelhttp.
//  3. It creates the analysis service client on top of it. Missing account
//     settings are not an error here; every call reports them instead.
//  4. It opens the configured metadata store. When the store is not configured
//     or cannot be opened, a store.Unavailable is installed and a warning logged,
//     so the process still starts and listings degrade to empty. Missing
//     settings mark it unconfigured, which makes uploads fail before any
//     network call.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jaycherian/go-video-insights/internal/indexer"
	"github.com/jaycherian/go-video-insights/internal/store"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ServiceClients is the container for the clients that talk to external systems.
type ServiceClients struct {
	HTTPClient *http.Client        // Traced client used for all outbound calls.
	Indexer    *indexer.Client     // Client of the external analysis service.
	Store      store.MetadataStore // The metadata store handle.
}

// Close releases the metadata store connection.
func (c *ServiceClients) Close(ctx context.Context) error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close(ctx)
}

// NewServiceClients initializes all external clients from the configuration.
//
// Inputs:
//   - ctx: The root context, used to connect to and ping the metadata store.
//   - config: The loaded application configuration.
//
// Outputs:
//   - *ServiceClients: The initialized container. It is never nil.
func NewServiceClients(ctx context.Context, config *Config) *ServiceClients {
	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	if err := config.Credentials().Validate(); err != nil {
		slog.Warn("video indexer is not fully configured; operations will fail", "error", err)
	}
	indexerClient := indexer.NewClient(config.Credentials(),
		indexer.WithHTTPClient(httpClient),
		indexer.WithBaseURL(config.VideoIndexer.ApiUrl),
		indexer.WithRateLimit(config.VideoIndexer.RateLimit))

	return &ServiceClients{
		HTTPClient: httpClient,
		Indexer:    indexerClient,
		Store:      OpenMetadataStore(ctx, config.MetadataStore),
	}
}

// OpenMetadataStore opens the configured store, falling back to
// store.Unavailable when that is not possible.
func OpenMetadataStore(ctx context.Context, settings MetadataStore) store.MetadataStore {
	s, err := openMetadataStore(ctx, settings)
	if err != nil {
		slog.Warn("metadata store unavailable", "driver", settings.Driver, "error", err)
		return &store.Unavailable{Reason: err.Error(), Unconfigured: errors.Is(err, store.ErrNotConfigured)}
	}
	slog.Info("metadata store ready", "driver", settings.Driver)
	return s
}

func openMetadataStore(ctx context.Context, settings MetadataStore) (store.MetadataStore, error) {
	if settings.ConnectionString == "" {
		return nil, fmt.Errorf("%w: no connection string", store.ErrNotConfigured)
	}
	switch settings.Driver {
	case store.DriverMongo, "":
		if settings.DatabaseName == "" {
			return nil, fmt.Errorf("%w: no database name", store.ErrNotConfigured)
		}
		s, err := store.NewMongoStore(ctx, settings.ConnectionString, settings.DatabaseName, settings.Collection)
		if err != nil {
			return nil, err
		}
		// An unreachable server is not fatal; each operation reports it.
		if err := s.Ping(ctx); err != nil {
			slog.Warn("mongodb ping failed", "error", err)
		}
		return s, nil
	case store.DriverSQLite:
		return store.NewSQLiteStore(ctx, settings.ConnectionString)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", store.ErrNotConfigured, settings.Driver)
	}
}
