// Copyright 2025 Viaje Scout Authors
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

// Package cor (Chain of Responsibility) provides the building blocks the
// analysis pipeline is assembled from: Commands that perform one unit of
// work, Chains that sequence them, and a shared Context carrying state,
// errors, and temp-file bookkeeping between steps.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the reserved context keys through which a chain
// pipes one command's primary output into the next command's input.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the shared property bag for a single workflow execution.
// Commands read their inputs from it, write their outputs to it, and record
// any errors against their own name.
type Context interface {
	// SetContext and GetContext manage the standard Go context, used for
	// cancellation and for nesting OpenTelemetry spans per command.
	SetContext(context context.Context)
	GetContext() context.Context

	// Add stores a key-value pair; it returns the Context for chaining.
	Add(key string, value interface{}) Context
	Get(key string) interface{}
	Remove(key string)

	// AddError records a command failure; HasErrors and GetErrors expose
	// the collected failures to the chain and to the HTTP layer.
	AddError(key string, err error)
	GetErrors() map[string]error
	HasErrors() bool

	// AddTempFile tracks a file created during the workflow so Close can
	// remove it once the request finishes.
	AddTempFile(file string)
	GetTempFiles() []string
	Close()
}

// Executable is anything with a core execution step.
type Executable interface {
	Execute(context Context)
}

// Command is an atomic, instrumented unit of work within a chain.
type Command interface {
	Executable

	GetName() string
	GetInputParam() string
	GetOutputParam() string

	// IsExecutable is the precondition check a chain runs before Execute.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is a Command composed of other Commands, executed in order.
// Because a Chain is itself a Command, chains nest.
type Chain interface {
	Command

	// ContinueOnFailure controls whether the chain keeps executing after
	// a command records an error (default: stop).
	ContinueOnFailure(bool) Chain
	AddCommand(command Command) Chain
}
