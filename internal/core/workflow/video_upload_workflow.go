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

// Package workflow defines the high-level business logic orchestrations,
// combining commands into the two pipelines of the video lifecycle. This file
// implements the upload pipeline.
package workflow

import (
	"github.com/jaycherian/go-video-insights/internal/cloud"
	"github.com/jaycherian/go-video-insights/internal/core/commands"
	"github.com/jaycherian/go-video-insights/internal/core/cor"
	"github.com/jaycherian/go-video-insights/internal/store"
)

// VideoUploadWorkflow forwards an uploaded file to the analysis service and
// records it. The chain context must carry the *model.UploadRequest under
// commands.GetUploadRequestParamName(); on success the created record is left
// under commands.GetVideoRecordParamName().
//
// The steps run strictly in order and the first failure ends the run, so a
// token failure never reaches the ingestion endpoint and a refused upload never
// creates a record.
type VideoUploadWorkflow struct {
	cor.BaseCommand
	ingester commands.VideoIngester
	issuer   commands.TokenIssuer
	store    store.MetadataStore
	chain    cor.Chain
}

// Execute runs the upload chain.
func (w *VideoUploadWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// IsExecutable requires the upload request.
func (w *VideoUploadWorkflow) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(commands.GetUploadRequestParamName()) != nil
}

func (w *VideoUploadWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: A fresh access token for this operation.
	out.AddCommand(commands.NewAcquireAccessToken("acquire-access-token", w.issuer))

	// Step 2: Stream the file to the ingestion endpoint as a private video.
	out.AddCommand(commands.NewVideoIngest("video-ingest", w.ingester))

	// Step 3: Insert the Uploaded record keyed by the assigned external id.
	out.AddCommand(commands.NewRecordRegister("record-register", w.store))

	w.chain = out
}

// NewVideoUploadWorkflow is the constructor for the VideoUploadWorkflow.
//
// Inputs:
//   - serviceClients: The process-wide clients; the indexer client and the metadata store are used.
//
// Returns:
//   - A pointer to a fully initialized VideoUploadWorkflow.
func NewVideoUploadWorkflow(serviceClients *cloud.ServiceClients) *VideoUploadWorkflow {
	w := &VideoUploadWorkflow{
		BaseCommand: *cor.NewBaseCommand("video-upload-workflow"),
		ingester:    serviceClients.Indexer,
		issuer:      serviceClients.Indexer,
		store:       serviceClients.Store,
	}
	w.initializeChain()
	return w
}
