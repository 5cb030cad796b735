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

// Package workflow. This file implements the analysis retrieval pipeline.
package workflow

import (
	"github.com/jaycherian/go-video-insights/internal/cloud"
	"github.com/jaycherian/go-video-insights/internal/core/commands"
	"github.com/jaycherian/go-video-insights/internal/core/cor"
	"github.com/jaycherian/go-video-insights/internal/core/model"
	"github.com/jaycherian/go-video-insights/internal/store"
)

// VideoAnalysisWorkflow fetches the current analysis of a video, normalizes it
// and marks the video's record as analyzed. The chain context must carry the
// external id under commands.GetExternalIdParamName(); on success the summary
// is left under commands.GetAnalysisSummaryParamName().
//
// A failed token or index call ends the run before the store is touched. The
// final status write never fails the run.
type VideoAnalysisWorkflow struct {
	cor.BaseCommand
	issuer commands.TokenIssuer
	reader commands.IndexReader
	store  store.MetadataStore
	chain  cor.Chain
}

// Execute runs the analysis chain.
func (w *VideoAnalysisWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// IsExecutable requires the external id.
func (w *VideoAnalysisWorkflow) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(commands.GetExternalIdParamName()) != nil
}

func (w *VideoAnalysisWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: A fresh access token for this operation.
	out.AddCommand(commands.NewAcquireAccessToken("acquire-access-token", w.issuer))

	// Step 2: Whatever payload the service holds for the video right now.
	out.AddCommand(commands.NewVideoIndexFetch("video-index-fetch", w.reader))

	// Step 3: Keywords and topics, from the nested or the summarized insights.
	out.AddCommand(commands.NewInsightsExtract("insights-extract"))

	// Step 4: Bookkeeping. Mismatches and store errors are tolerated.
	out.AddCommand(commands.NewRecordStatusUpdate("record-status-update", w.store, model.StatusAnalyzed))

	w.chain = out
}

// NewVideoAnalysisWorkflow is the constructor for the VideoAnalysisWorkflow.
func NewVideoAnalysisWorkflow(serviceClients *cloud.ServiceClients) *VideoAnalysisWorkflow {
	w := &VideoAnalysisWorkflow{
		BaseCommand: *cor.NewBaseCommand("video-analysis-workflow"),
		issuer:      serviceClients.Indexer,
		reader:      serviceClients.Indexer,
		store:       serviceClients.Store,
	}
	w.initializeChain()
	return w
}
