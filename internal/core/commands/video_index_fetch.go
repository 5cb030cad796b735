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

// VideoIndexFetch reads whatever analysis payload the service currently holds
// for the video. It does not wait for processing to finish.
type VideoIndexFetch struct {
	cor.BaseCommand
	reader IndexReader
}

// NewVideoIndexFetch is the constructor for the VideoIndexFetch command.
func NewVideoIndexFetch(name string, reader IndexReader) *VideoIndexFetch {
	out := &VideoIndexFetch{BaseCommand: *cor.NewBaseCommand(name), reader: reader}
	out.InputParamName = GetExternalIdParamName()
	out.OutputParamName = GetIndexPayloadParamName()
	return out
}

// IsExecutable requires the external id and an access token.
func (c *VideoIndexFetch) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) && context.Get(GetAccessTokenParamName()) != nil
}

func (c *VideoIndexFetch) Execute(context cor.Context) {
	externalId := context.Get(c.GetInputParam()).(string)
	token := context.Get(GetAccessTokenParamName()).(model.AccessToken)

	raw, err := c.reader.Index(context.GetContext(), token, externalId)
	if err != nil {
		c.Fail(context, err)
		return
	}
	c.Succeed(context, raw)
}
