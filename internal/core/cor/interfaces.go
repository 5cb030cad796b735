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

// Package cor (Chain of Responsibility) is the small runtime the video lifecycle
// operations are assembled from. An operation is a Chain of Commands sharing one
// Context: each command reads what earlier steps left in the context, does one
// unit of work (acquire a token, forward a file, insert a record, ...) and writes
// its result back. The first failure stops the chain.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Keys used by BaseChain to pipe one command's output into the next command's input.
const (
	// CtxIn holds the output of the previous command while the next one runs.
	CtxIn = "__IN__"
	// CtxOut is where a command leaves its primary output for the chain to pick up.
	CtxOut = "__OUT__"
)

// Context is the shared state of one chain execution. It is not safe for
// concurrent use; each operation creates its own.
type Context interface {
	// SetContext replaces the Go context carried by this chain context. The
	// chain swaps it per command so spans nest under the right parent.
	SetContext(context context.Context)

	// GetContext returns the current Go context.
	GetContext() context.Context

	// Add stores a value under key and returns the context for chaining.
	Add(key string, value interface{}) Context

	// Get returns the value stored under key, or nil.
	Get(key string) interface{}

	// Remove deletes the value stored under key.
	Remove(key string)

	// AddError records a failure raised by the named command.
	AddError(key string, err error)

	// GetErrors returns all recorded failures keyed by command name.
	GetErrors() map[string]error

	// HasErrors reports whether any failure has been recorded.
	HasErrors() bool

	// Err returns the first recorded failure, or nil.
	Err() error
}

// Executable is anything with a unit of work to run against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is one step of a chain.
type Command interface {
	Executable

	// GetName returns the command name used for spans and counter names.
	GetName() string

	// GetInputParam returns the context key the command reads its primary input from.
	GetInputParam() string

	// GetOutputParam returns the context key the command writes its primary output to.
	GetOutputParam() string

	// IsExecutable reports whether the context holds what the command needs.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered list of commands. A Chain is itself a Command, so chains nest.
type Chain interface {
	Command

	// ContinueOnFailure makes the chain run every command even after a failure.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the chain.
	AddCommand(command Command) Chain
}
