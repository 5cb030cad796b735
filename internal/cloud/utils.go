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

// Package cloud. This file contains the hierarchical configuration loader.
//
// Functions:
//   - fileExists: A simple helper to check if a file exists.
//   - LoadConfig: Reads a base configuration file and then overwrites values
//     with a second, runtime-specific file (e.g., .env.local.toml, .env.test.toml).
//     The directory and the runtime are taken from environment variables.
//   - LoadDotEnv: Loads a `.env` file of plain KEY=value pairs into the process
//     environment, without replacing variables that are already set.
//   - ApplyEnvironment: Overwrites configuration values with the environment
//     variables the deployment sets.
package cloud

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Cloud Constants define key strings used for configuration loading.
const (
	ConfigFileBaseName  = ".env"              // The base name for configuration files (e.g., ".env.toml").
	ConfigFileExtension = ".toml"             // The file extension for configuration files.
	ConfigSeparator     = "."                 // The separator used in config file names (e.g., ".env.local.toml").
	EnvConfigFilePrefix = "GCP_CONFIG_PREFIX" // The environment variable for specifying the config directory.
	EnvConfigRuntime    = "GCP_RUNTIME"       // The environment variable for specifying the runtime context (e.g., "local", "test", "prod").
)

// Environment variables that override configuration values.
const (
	EnvSubscriptionKey  = "VIDEO_INDEXER_SUBSCRIPTION_KEY"
	EnvLocation         = "VIDEO_INDEXER_LOCATION"
	EnvAccountId        = "VIDEO_INDEXER_ACCOUNT_ID"
	EnvConnectionString = "MONGODB_CONNECTION_STRING"
	EnvDatabaseName     = "MONGODB_DB_NAME"
	EnvStoreDriver      = "METADATA_STORE_DRIVER"
	EnvPort             = "PORT"
)

// fileExists checks if a file or directory exists at the given path.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig provides a hierarchical configuration loading mechanism. It first loads a
// base configuration file and then merges or overwrites its values with an environment-specific
// configuration file. Missing files are skipped.
//
// Inputs:
//   - baseConfig: A pointer to the target configuration struct.
//
// Outputs:
//   - error: An error when an existing file cannot be decoded.
func LoadConfig(baseConfig interface{}) error {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "test"
	}

	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension

	for _, fileName := range []string{baseConfigFileName, envConfigFileName} {
		if !fileExists(fileName) {
			slog.Debug("configuration file not found, skipping", "file", fileName)
			continue
		}
		if _, err := toml.DecodeFile(fileName, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", fileName, err)
		}
		slog.Info("loaded configuration file", "file", fileName)
	}
	return nil
}

// LoadDotEnv loads KEY=value pairs from the given files into the environment.
// Files that do not exist are skipped; variables already set are kept.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if !fileExists(f) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnvironment overwrites config values with any of the override
// variables that are set and non-empty.
func ApplyEnvironment(config *Config) {
	override := func(target *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*target = v
		}
	}
	override(&config.VideoIndexer.SubscriptionKey, EnvSubscriptionKey)
	override(&config.VideoIndexer.Location, EnvLocation)
	override(&config.VideoIndexer.AccountId, EnvAccountId)
	override(&config.MetadataStore.ConnectionString, EnvConnectionString)
	override(&config.MetadataStore.DatabaseName, EnvDatabaseName)
	override(&config.MetadataStore.Driver, EnvStoreDriver)
	if port := os.Getenv(EnvPort); port != "" {
		config.Application.ListenAddress = ":" + port
	}
}
