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
	"log/slog"
)

// BaseChain executes its commands in order, piping each command's output
// parameter into the next command's input parameter. After each command it
// checks the context for errors and stops unless configured to continue.
type BaseChain struct {
	BaseCommand
	commands          []Command
	continueOnFailure bool
}

func NewBaseChain(name string) *BaseChain {
	return &BaseChain{
		BaseCommand:       *NewBaseCommand(name),
		commands:          make([]Command, 0),
		continueOnFailure: false,
	}
}

func (c *BaseChain) ContinueOnFailure(continueOnFailure bool) Chain {
	c.continueOnFailure = continueOnFailure
	return c
}

func (c *BaseChain) AddCommand(command Command) Chain {
	c.commands = append(c.commands, command)
	return c
}

// IsExecutable for a chain only requires a context; the first command's own
// precondition decides whether work actually starts.
func (c *BaseChain) IsExecutable(context Context) bool {
	return context != nil
}

// Execute runs the chained commands sequentially. Each command gets its own
// child span, and the chain flips the previous command's output into the
// next command's input before dispatch.
func (c *BaseChain) Execute(context Context) {
	chainCtx, chainSpan := c.GetTracer().Start(context.GetContext(), fmt.Sprintf("chain.%s", c.GetName()))
	defer chainSpan.End()
	context.SetContext(chainCtx)

	for i, command := range c.commands {
		// Pipe the prior output forward, unless the command reads a
		// custom input parameter that is already populated.
		if i > 0 {
			prior := c.commands[i-1]
			if out := context.Get(prior.GetOutputParam()); out != nil {
				context.Add(command.GetInputParam(), out)
			}
		}

		if !command.IsExecutable(context) {
			context.AddError(command.GetName(),
				fmt.Errorf("command %s missing required input %s", command.GetName(), command.GetInputParam()))
		} else {
			cmdCtx, cmdSpan := command.GetTracer().Start(context.GetContext(), fmt.Sprintf("command.%s", command.GetName()))
			context.SetContext(cmdCtx)
			command.Execute(context)
			cmdSpan.End()
			context.SetContext(chainCtx)
		}

		if context.HasErrors() {
			command.GetErrorCounter().Add(context.GetContext(), 1)
			if !c.continueOnFailure {
				slog.Error("chain halted on command failure",
					"chain", c.GetName(), "command", command.GetName())
				c.GetErrorCounter().Add(context.GetContext(), 1)
				return
			}
		} else {
			command.GetSuccessCounter().Add(context.GetContext(), 1)
		}
	}
	if !context.HasErrors() {
		c.GetSuccessCounter().Add(context.GetContext(), 1)
	}
}
