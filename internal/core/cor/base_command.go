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

// Package cor (Chain of Responsibility). This file defines `BaseCommand`, which
// every concrete command embeds. It supplies:
//   - the command name, used for span names and counter names.
//   - a tracer, a meter and the `<name>.counter.success` / `<name>.counter.error` counters.
//   - input/output key resolution that falls back to CtxIn / CtxOut.
//   - Succeed and Fail helpers that keep counters and the context in step.
package cor

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the meter namespace shared by all commands.
const InstrumentationName = "github.com/jaycherian/go-video-insights"

// BaseCommand is the default partial implementation of Command.
type BaseCommand struct {
	Name            string              // Unique command name.
	InputParamName  string              // Context key for the primary input. Empty means CtxIn.
	OutputParamName string              // Context key for the primary output. Empty means CtxOut.
	Tracer          trace.Tracer        // Tracer named after the command.
	Meter           metric.Meter        // Meter shared by all commands.
	SuccessCounter  metric.Int64Counter // Incremented once per successful Execute.
	ErrorCounter    metric.Int64Counter // Incremented once per failed Execute.
}

// NewBaseCommand creates a BaseCommand with its telemetry instruments.
// Instrument creation failures are logged; the global no-op provider never fails.
//
// Inputs:
//   - name: The command name.
//
// Outputs:
//   - *BaseCommand: The initialized command base.
func NewBaseCommand(name string) *BaseCommand {
	meter := otel.Meter(InstrumentationName)

	successCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.success", name))
	if err != nil {
		slog.Error("failed to create success counter", "command", name, "error", err)
	}
	errorCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.error", name))
	if err != nil {
		slog.Error("failed to create error counter", "command", name, "error", err)
	}

	return &BaseCommand{
		Name:           name,
		Tracer:         otel.Tracer(name),
		Meter:          meter,
		SuccessCounter: successCounter,
		ErrorCounter:   errorCounter,
	}
}

func (c *BaseCommand) GetName() string {
	return c.Name
}

// IsExecutable requires a Go context and a value under the input key.
func (c *BaseCommand) IsExecutable(context Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(c.GetInputParam()) != nil
}

func (c *BaseCommand) GetInputParam() string {
	if len(c.InputParamName) == 0 {
		return CtxIn
	}
	return c.InputParamName
}

func (c *BaseCommand) GetOutputParam() string {
	if len(c.OutputParamName) == 0 {
		return CtxOut
	}
	return c.OutputParamName
}

func (c *BaseCommand) GetTracer() trace.Tracer {
	return c.Tracer
}

func (c *BaseCommand) GetMeter() metric.Meter {
	return c.Meter
}

func (c *BaseCommand) GetSuccessCounter() metric.Int64Counter {
	return c.SuccessCounter
}

func (c *BaseCommand) GetErrorCounter() metric.Int64Counter {
	return c.ErrorCounter
}

// Succeed stores out under the command's output key and under CtxOut, and
// counts a success. A nil out only counts.
func (c *BaseCommand) Succeed(context Context, out interface{}) {
	if c.SuccessCounter != nil {
		c.SuccessCounter.Add(context.GetContext(), 1)
	}
	if out == nil {
		return
	}
	context.Add(c.GetOutputParam(), out)
	if c.GetOutputParam() != CtxOut {
		context.Add(CtxOut, out)
	}
}

// Fail records err against the command and counts an error.
func (c *BaseCommand) Fail(context Context, err error) {
	if c.ErrorCounter != nil {
		c.ErrorCounter.Add(context.GetContext(), 1)
	}
	context.AddError(c.GetName(), err)
}
