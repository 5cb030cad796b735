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

package indexer

import (
	"fmt"
	"strings"

	"github.com/jaycherian/go-video-insights/internal/core/model"
)

// Credentials are the static account settings exchanged for an access token.
type Credentials struct {
	SubscriptionKey string // Sent in the Ocp-Apim-Subscription-Key header of the token call.
	Location        string // Service region, e.g. "trial" or "eastus".
	AccountId       string // The account every video belongs to.
}

// Validate reports a Configuration failure naming every missing setting.
func (c Credentials) Validate() error {
	var missing []string
	if strings.TrimSpace(c.SubscriptionKey) == "" {
		missing = append(missing, "subscription_key")
	}
	if strings.TrimSpace(c.Location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(c.AccountId) == "" {
		missing = append(missing, "account_id")
	}
	if len(missing) == 0 {
		return nil
	}
	return model.NewFailure(model.KindConfiguration,
		fmt.Sprintf("video indexer is not configured, missing: %s", strings.Join(missing, ", ")), nil)
}
