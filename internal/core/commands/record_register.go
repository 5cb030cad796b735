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
	"fmt"
	"log/slog"
	"time"

	"github.com/jaycherian/go-video-insights/internal/core/cor"
	"github.com/jaycherian/go-video-insights/internal/core/model"
	"github.com/jaycherian/go-video-insights/internal/store"
)

// RecordRegister creates the Uploaded record for a video the service accepted.
//
// When the insert fails the remote video already exists and is left in place;
// the failure message names its external id so it can be reconciled by hand.
type RecordRegister struct {
	cor.BaseCommand
	store store.MetadataStore
	now   func() time.Time
}

// NewRecordRegister is the constructor for the RecordRegister command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - metadata: The store the record is inserted into.
//
// Outputs:
//   - *RecordRegister: The command. Its output key is GetVideoRecordParamName().
func NewRecordRegister(name string, metadata store.MetadataStore) *RecordRegister {
	out := &RecordRegister{BaseCommand: *cor.NewBaseCommand(name), store: metadata, now: time.Now}
	out.InputParamName = GetExternalIdParamName()
	out.OutputParamName = GetVideoRecordParamName()
	return out
}

// WithClock replaces the time source used for the record's upload time.
func (c *RecordRegister) WithClock(now func() time.Time) *RecordRegister {
	c.now = now
	return c
}

func (c *RecordRegister) Execute(context cor.Context) {
	externalId := context.Get(c.GetInputParam()).(string)
	filename := ""
	if in, ok := context.Get(GetUploadRequestParamName()).(*model.UploadRequest); ok {
		filename = in.Filename
	}

	record := model.NewVideoRecord(externalId, filename, c.now())
	if _, err := c.store.Insert(context.GetContext(), record); err != nil {
		slog.ErrorContext(context.GetContext(), "video uploaded but not recorded",
			"external_id", externalId, "filename", filename, "error", err)
		c.Fail(context, model.NewFailure(model.KindStore,
			fmt.Sprintf("video %s was uploaded but could not be recorded", externalId), err))
		return
	}
	c.Succeed(context, record)
}
