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

package store

import (
	"context"
	"fmt"

	"github.com/jaycherian/go-video-insights/internal/core/model"
)

// Unavailable stands in when the metadata store could not be opened. Every
// operation fails with the reason it was installed.
type Unavailable struct {
	Reason       string
	Unconfigured bool // The settings were missing or invalid; see IsConfigured.
}

func (u *Unavailable) err() error {
	return fmt.Errorf("metadata store unavailable: %s", u.Reason)
}

func (u *Unavailable) Insert(context.Context, *model.VideoRecord) (string, error) {
	return "", u.err()
}

func (u *Unavailable) List(context.Context) ([]*model.VideoRecord, error) {
	return nil, u.err()
}

func (u *Unavailable) SetStatus(context.Context, string, model.Status) (bool, error) {
	return false, u.err()
}

func (u *Unavailable) Close(context.Context) error {
	return nil
}
