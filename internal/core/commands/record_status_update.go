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

// Package commands. This file defines the final step of the analysis chain.
//
// The status write is bookkeeping only. Neither a missing record nor a store
// error fails the chain: both are logged at WARN, counted as errors and left
// in the context under GetStatusUpdateIssueParamName(), and the summary is
// passed on untouched. The update is a plain overwrite, so concurrent or
// repeated retrievals of the same video converge on the same value.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/jaycherian/go-video-insights/internal/core/cor"
	"github.com/jaycherian/go-video-insights/internal/core/model"
	"github.com/jaycherian/go-video-insights/internal/store"
)

// RecordStatusUpdate sets the record of the summarized video to a fixed status.
type RecordStatusUpdate struct {
	cor.BaseCommand
	store  store.MetadataStore
	status model.Status
}

// NewRecordStatusUpdate is the constructor for the RecordStatusUpdate command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - metadata: The store holding the records.
//   - status: The status to set, normally model.StatusAnalyzed.
//
// Outputs:
//   - *RecordStatusUpdate: The command. It reads GetAnalysisSummaryParamName().
func NewRecordStatusUpdate(name string, metadata store.MetadataStore, status model.Status) *RecordStatusUpdate {
	out := &RecordStatusUpdate{BaseCommand: *cor.NewBaseCommand(name), store: metadata, status: status}
	out.InputParamName = GetAnalysisSummaryParamName()
	out.OutputParamName = GetAnalysisSummaryParamName()
	return out
}

func (c *RecordStatusUpdate) Execute(context cor.Context) {
	summary := context.Get(c.GetInputParam()).(*model.AnalysisSummary)
	ctx := context.GetContext()

	matched, err := c.store.SetStatus(ctx, summary.ExternalId, c.status)
	switch {
	case err != nil:
		c.tolerate(context, model.NewFailure(model.KindStore,
			fmt.Sprintf("could not set status of video %s", summary.ExternalId), err))
		slog.WarnContext(ctx, "video status update failed",
			"external_id", summary.ExternalId, "status", c.status, "error", err)
	case !matched:
		c.tolerate(context, model.NewFailure(model.KindStoreMismatch,
			fmt.Sprintf("no record for video %s", summary.ExternalId), nil))
		slog.WarnContext(ctx, "no video record matched status update",
			"external_id", summary.ExternalId, "status", c.status)
	default:
		c.GetSuccessCounter().Add(ctx, 1)
	}
	context.Add(cor.CtxOut, summary)
}

func (c *RecordStatusUpdate) tolerate(context cor.Context, issue *model.Failure) {
	c.GetErrorCounter().Add(context.GetContext(), 1)
	context.Add(GetStatusUpdateIssueParamName(), issue)
}
