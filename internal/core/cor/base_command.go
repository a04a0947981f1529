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

package cor

import (
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// BaseCommand supplies the instrumentation plumbing every concrete command
// shares: a named tracer, a meter, and success/error counters. Concrete
// commands embed it and implement Execute.
type BaseCommand struct {
	Name           string
	InputParam     string
	OutputParam    string
	Tracer         trace.Tracer
	Meter          metric.Meter
	SuccessCounter metric.Int64Counter
	ErrorCounter   metric.Int64Counter
}

// NewBaseCommand creates an instrumented command with the default in/out
// parameter names so chains can pipe outputs without extra wiring.
func NewBaseCommand(name string) *BaseCommand {
	tracer := otel.Tracer(fmt.Sprintf("command.%s.tracer", name))
	meter := otel.Meter(fmt.Sprintf("command.%s.meter", name))

	successCounter, err := meter.Int64Counter(fmt.Sprintf("command.%s.success.counter", name))
	if err != nil {
		log.Printf("error creating success counter for command %s: %v\n", name, err)
	}
	errorCounter, err := meter.Int64Counter(fmt.Sprintf("command.%s.error.counter", name))
	if err != nil {
		log.Printf("error creating error counter for command %s: %v\n", name, err)
	}

	return &BaseCommand{
		Name:           name,
		InputParam:     CtxIn,
		OutputParam:    CtxOut,
		Tracer:         tracer,
		Meter:          meter,
		SuccessCounter: successCounter,
		ErrorCounter:   errorCounter,
	}
}

func (c *BaseCommand) GetName() string {
	return c.Name
}

func (c *BaseCommand) GetInputParam() string {
	return c.InputParam
}

func (c *BaseCommand) GetOutputParam() string {
	return c.OutputParam
}

// IsExecutable verifies the command's input parameter is present.
func (c *BaseCommand) IsExecutable(context Context) bool {
	return context != nil && context.Get(c.InputParam) != nil
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
