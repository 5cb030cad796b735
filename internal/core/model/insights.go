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

// Package model defines the core data structures for the application.
// This file, `insights.go`, contains the transient analysis view produced on
// every retrieval and the logic that derives it from the raw index payload
// returned by the external analysis service.
//
// The payload shape differs between service versions. Insights are looked up
// with an ordered fallback:
//  1. `videos[0].insights`, when present and non-empty.
//  2. `summarizedInsights`, otherwise.
//
// When neither is present the summary carries empty sequences; the raw payload
// is always kept.
package model

import (
	"encoding/json"
	"fmt"
)

// MissingValuePlaceholder replaces a keyword text or topic name the service did not supply.
const MissingValuePlaceholder = "-"

// AnalysisSummary is the normalized, non-persistent view of a video's analysis.
type AnalysisSummary struct {
	ExternalId string          `json:"external_id"`
	Keywords   []string        `json:"keywords"`
	Topics     []string        `json:"topics"`
	Raw        json.RawMessage `json:"raw"`
}

// insightsBlock is kept as raw members so an empty object `{}` can be told
// apart from one that carries data.
type insightsBlock map[string]json.RawMessage

// indexPayload covers only the two paths the lookup needs.
type indexPayload struct {
	Videos []struct {
		Insights insightsBlock `json:"insights"`
	} `json:"videos"`
	SummarizedInsights insightsBlock `json:"summarizedInsights"`
}

// SummarizeIndex derives an AnalysisSummary from the raw index payload.
// It never fails: an undecodable or insight-less payload yields empty sequences.
//
// Inputs:
//   - externalId: The id the payload belongs to.
//   - raw: The unmodified payload returned by the external service.
//
// Outputs:
//   - *AnalysisSummary: Keywords and topics in service order, plus the raw payload.
func SummarizeIndex(externalId string, raw json.RawMessage) *AnalysisSummary {
	out := &AnalysisSummary{
		ExternalId: externalId,
		Keywords:   make([]string, 0),
		Topics:     make([]string, 0),
		Raw:        raw,
	}

	insights := locateInsights(raw)
	if len(insights) == 0 {
		return out
	}
	out.Keywords = collectField(insights["keywords"], "text")
	out.Topics = collectField(insights["topics"], "name")
	return out
}

func locateInsights(raw json.RawMessage) insightsBlock {
	var payload indexPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// A mistyped member (e.g. `videos` not being an array) must not hide the
		// fallback path, so retry with only the top-level block.
		var fallback struct {
			SummarizedInsights insightsBlock `json:"summarizedInsights"`
		}
		if json.Unmarshal(raw, &fallback) != nil {
			return nil
		}
		return fallback.SummarizedInsights
	}
	if len(payload.Videos) > 0 && len(payload.Videos[0].Insights) > 0 {
		return payload.Videos[0].Insights
	}
	return payload.SummarizedInsights
}

// collectField reads `field` from each entry in the list, substituting the
// placeholder when the entry is not an object or the field is absent or null.
// Anything that is not a list yields an empty result.
func collectField(list json.RawMessage, field string) []string {
	out := make([]string, 0)
	if len(list) == 0 {
		return out
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(list, &entries); err != nil {
		return out
	}
	for _, raw := range entries {
		var entry map[string]any
		if err := json.Unmarshal(raw, &entry); err != nil {
			out = append(out, MissingValuePlaceholder)
			continue
		}
		switch v := entry[field].(type) {
		case nil:
			out = append(out, MissingValuePlaceholder)
		case string:
			out = append(out, v)
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}
