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

// Package cloud defines the application configuration, loaded from TOML files
// and environment variables, and the container of process-wide clients built
// from it.
//
// This file centralizes all configuration-related structs.
//
// Structs:
//   - VideoIndexer: Account settings and endpoint of the external analysis service.
//   - MetadataStore: Which metadata store to use and how to reach it.
//   - Config: The top-level struct that aggregates all other configuration structs.
//
// Functions:
//   - NewConfig: A constructor that returns a Config carrying the defaults.
package cloud

import (
	"github.com/jaycherian/go-video-insights/internal/indexer"
	"github.com/jaycherian/go-video-insights/internal/store"
)

// VideoIndexer represents the configuration of the external analysis service.
type VideoIndexer struct {
	ApiUrl          string `toml:"api_url"`          // Service root, e.g. "https://api.videoindexer.ai".
	SubscriptionKey string `toml:"subscription_key"` // Key exchanged for access tokens.
	Location        string `toml:"location"`         // Service region of the account.
	AccountId       string `toml:"account_id"`       // The account videos are uploaded to.
	RateLimit       int    `toml:"rate_limit"`       // Outbound requests per second; zero disables limiting.
}

// MetadataStore represents the configuration of the metadata store.
type MetadataStore struct {
	Driver           string `toml:"driver"`            // "mongodb" or "sqlite".
	ConnectionString string `toml:"connection_string"` // MongoDB URI, or the SQLite file path / ":memory:".
	DatabaseName     string `toml:"database_name"`     // MongoDB database name. Unused by SQLite.
	Collection       string `toml:"collection"`        // MongoDB collection name.
}

// Config represents the overall configuration for the application. It is
// loaded once at startup and never mutated afterwards.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name            string `toml:"name"`              // The name of the application, used as the service name in telemetry.
		GoogleProjectId string `toml:"google_project_id"` // When set, traces and metrics are exported to this project.
		ListenAddress   string `toml:"listen_address"`    // HTTP listen address, e.g. ":8080".
		LogFile         string `toml:"log_file"`          // Optional file that receives a copy of the logs.
	} `toml:"application"`
	VideoIndexer  VideoIndexer  `toml:"video_indexer"`  // External analysis service configuration.
	MetadataStore MetadataStore `toml:"metadata_store"` // Metadata store configuration.
}

// NewConfig creates a Config populated with the defaults that TOML files and
// the environment may override.
//
// Outputs:
//   - *Config: A pointer to a new Config struct.
func NewConfig() *Config {
	c := &Config{
		VideoIndexer: VideoIndexer{ApiUrl: indexer.DefaultBaseURL},
		MetadataStore: MetadataStore{
			Driver:     store.DriverMongo,
			Collection: store.DefaultCollection,
		},
	}
	c.Application.Name = "video-insights"
	c.Application.ListenAddress = ":8080"
	return c
}

// Credentials returns the analysis service account settings.
func (c *Config) Credentials() indexer.Credentials {
	return indexer.Credentials{
		SubscriptionKey: c.VideoIndexer.SubscriptionKey,
		Location:        c.VideoIndexer.Location,
		AccountId:       c.VideoIndexer.AccountId,
	}
}
