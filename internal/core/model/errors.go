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

// Package model defines the data structures for the application. This file,
// `errors.go`, defines the failure taxonomy shared by every operation.
//
// Each Failure carries a Kind that classifies where the operation broke down,
// a human readable message and, when the external service answered, the
// upstream status code and body. Failures compare equal under errors.Is when
// their kinds match, so callers test against the Err* sentinels below.
package model

import (
	"errors"
	"fmt"
	"net/http"
)

// FailureKind classifies a Failure.
type FailureKind string

const (
	KindClientInput   FailureKind = "ClientInput"   // The request itself was unusable (e.g. no file).
	KindConfiguration FailureKind = "Configuration" // Required settings are missing.
	KindAuth          FailureKind = "Auth"          // Token acquisition yielded no usable token.
	KindTransport     FailureKind = "Transport"     // Network-level failure or timeout.
	KindUpstream      FailureKind = "Upstream"      // The service answered with a non-success status or an unusable body.
	KindStore         FailureKind = "Store"         // The metadata store operation failed.
	KindStoreMismatch FailureKind = "StoreMismatch" // The store was reachable but no record matched.
)

// Sentinels for errors.Is comparisons.
var (
	ErrClientInput   = &Failure{Kind: KindClientInput}
	ErrConfiguration = &Failure{Kind: KindConfiguration}
	ErrAuth          = &Failure{Kind: KindAuth}
	ErrTransport     = &Failure{Kind: KindTransport}
	ErrUpstream      = &Failure{Kind: KindUpstream}
	ErrStore         = &Failure{Kind: KindStore}
	ErrStoreMismatch = &Failure{Kind: KindStoreMismatch}
)

// Failure is the structured outcome of a failed operation.
type Failure struct {
	Kind       FailureKind
	Message    string
	StatusCode int    // Upstream HTTP status, zero when the service never answered.
	Details    string // Upstream body or underlying error text, for diagnosis.
	Err        error
}

// NewFailure creates a Failure of the given kind wrapping err (which may be nil).
func NewFailure(kind FailureKind, message string, err error) *Failure {
	f := &Failure{Kind: kind, Message: message, Err: err}
	if err != nil {
		f.Details = err.Error()
	}
	return f
}

// WithUpstream attaches the upstream status code and body and returns f.
func (f *Failure) WithUpstream(statusCode int, body string) *Failure {
	f.StatusCode = statusCode
	f.Details = body
	return f
}

func (f *Failure) Error() string {
	msg := f.Message
	if msg == "" {
		msg = string(f.Kind) + " failure"
	}
	if f.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, f.StatusCode)
	}
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", msg, f.Err)
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is matches any Failure of the same kind.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Kind == f.Kind
}

// HTTPStatus is the status the presentation layer responds with for this failure.
func (f *Failure) HTTPStatus() int {
	if f.Kind == KindClientInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// AsFailure returns err as a *Failure. Errors that are not already classified
// are wrapped with the fallback kind. A nil err yields nil.
func AsFailure(err error, fallback FailureKind) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return NewFailure(fallback, "", err)
}
