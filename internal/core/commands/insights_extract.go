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

package commands

import (
	"encoding/json"
	"log/slog"

	"github.com/jaycherian/go-video-insights/internal/core/cor"
	"github.com/jaycherian/go-video-insights/internal/core/model"
)

// InsightsExtract turns the raw index payload into an AnalysisSummary. It
// cannot fail: a payload without insights yields empty keyword and topic lists.
type InsightsExtract struct {
	cor.BaseCommand
}

// NewInsightsExtract is the constructor for the InsightsExtract command.
func NewInsightsExtract(name string) *InsightsExtract {
	out := &InsightsExtract{BaseCommand: *cor.NewBaseCommand(name)}
	out.InputParamName = GetIndexPayloadParamName()
	out.OutputParamName = GetAnalysisSummaryParamName()
	return out
}

func (c *InsightsExtract) Execute(context cor.Context) {
	raw := context.Get(c.GetInputParam()).(json.RawMessage)
	externalId, _ := context.Get(GetExternalIdParamName()).(string)

	summary := model.SummarizeIndex(externalId, raw)
	if len(summary.Keywords) == 0 && len(summary.Topics) == 0 {
		slog.InfoContext(context.GetContext(), "index payload carries no insights yet", "external_id", externalId)
	}
	c.Succeed(context, summary)
}
