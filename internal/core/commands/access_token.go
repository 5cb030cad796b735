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
	"github.com/jaycherian/go-video-insights/internal/core/cor"
	"github.com/jaycherian/go-video-insights/internal/core/model"
)

// AcquireAccessToken is the first step of every operation. It always fetches a
// fresh token; nothing is cached between operations.
type AcquireAccessToken struct {
	cor.BaseCommand
	issuer TokenIssuer
}

// NewAcquireAccessToken is the constructor for the AcquireAccessToken command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - issuer: The token source, normally the *indexer.Client.
//
// Outputs:
//   - *AcquireAccessToken: The command. Its output key is GetAccessTokenParamName().
func NewAcquireAccessToken(name string, issuer TokenIssuer) *AcquireAccessToken {
	out := &AcquireAccessToken{BaseCommand: *cor.NewBaseCommand(name), issuer: issuer}
	out.OutputParamName = GetAccessTokenParamName()
	return out
}

// IsExecutable needs nothing from earlier steps.
func (c *AcquireAccessToken) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil
}

func (c *AcquireAccessToken) Execute(context cor.Context) {
	token, err := c.issuer.AccessToken(context.GetContext())
	if err != nil {
		c.Fail(context, err)
		return
	}
	if token.IsZero() {
		c.Fail(context, model.NewFailure(model.KindAuth, "no usable access token", nil))
		return
	}
	c.Succeed(context, token)
}
