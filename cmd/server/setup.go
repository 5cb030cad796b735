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

// Package main contains the setup and initialization logic for the application's state.
// This file builds the configuration and the StateManager that holds every
// shared dependency: the loaded configuration, the service clients and the
// video service. The StateManager is created once by main and passed to the
// route setup; nothing here is global.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jaycherian/go-video-insights/internal/cloud"
	"github.com/jaycherian/go-video-insights/internal/core/services"
)

// StateManager holds the process-wide dependencies.
type StateManager struct {
	config       *cloud.Config
	cloud        *cloud.ServiceClients
	videoService *services.VideoService
}

// SetupOS points the configuration loader at the configs directory with the
// local runtime, unless the environment already chose otherwise.
func SetupOS() error {
	defaults := map[string]string{
		cloud.EnvConfigFilePrefix: "configs",
		cloud.EnvConfigRuntime:    "local",
	}
	for key, value := range defaults {
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

// GetConfig loads `.env`, the TOML files and the environment overrides, in that order.
func GetConfig() (*cloud.Config, error) {
	if err := cloud.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := SetupOS(); err != nil {
		return nil, fmt.Errorf("failed to setup os: %w", err)
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		return nil, err
	}
	cloud.ApplyEnvironment(config)
	return config, nil
}

// NewStateManager creates the service clients and the video service.
func NewStateManager(ctx context.Context, config *cloud.Config) *StateManager {
	clients := cloud.NewServiceClients(ctx, config)
	return &StateManager{
		config:       config,
		cloud:        clients,
		videoService: services.NewVideoService(clients),
	}
}

// Close releases the service clients.
func (s *StateManager) Close(ctx context.Context) error {
	return s.cloud.Close(ctx)
}
