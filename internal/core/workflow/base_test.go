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

// Package workflow_test contains integration tests for the core application workflows.
// This file, `base_test.go`, installs logging and the local telemetry providers
// once for the whole package. Each test builds its own stub service and store.
package workflow_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jaycherian/go-video-insights/internal/cloud"
	"github.com/jaycherian/go-video-insights/internal/telemetry"
	test "github.com/jaycherian/go-video-insights/internal/testutil"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

const tName = "github.com/jaycherian/go-video-insights/tests/workflow"

var (
	tracer = otel.Tracer(tName)
	logger = otelslog.NewLogger(tName)
)

var fixedTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	closeLog, err := telemetry.SetupLogging("")
	if err != nil {
		panic(err)
	}
	shutdown, err := telemetry.SetupOpenTelemetry(ctx, telemetry.Settings{ServiceName: "video-insights-test"})
	if err != nil {
		panic(err)
	}
	logger.Info("completed test setup")

	exitCode := m.Run()

	if err := shutdown(ctx); err != nil {
		logger.Error("failed to shutdown telemetry", "error", err)
	}
	_ = closeLog()
	os.Exit(exitCode)
}

// newClients returns service clients backed by a fresh stub and in-memory store.
func newClients(t *testing.T) (*cloud.ServiceClients, *test.IndexerStub) {
	t.Helper()
	stub := test.NewIndexerStub(t)
	return &cloud.ServiceClients{Indexer: stub.Client(), Store: test.NewMemoryStore(t)}, stub
}
