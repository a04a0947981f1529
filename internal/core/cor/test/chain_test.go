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

package cor_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viajescout/viaje-scout/internal/core/cor"
)

// appendCommand reads a string from its input parameter, appends its own
// suffix, and writes the result to its output parameter.
type appendCommand struct {
	cor.BaseCommand
	suffix string
	fail   bool
	ran    bool
}

func newAppendCommand(name, suffix string) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), suffix: suffix}
}

func (c *appendCommand) Execute(context cor.Context) {
	c.ran = true
	if c.fail {
		context.AddError(c.GetName(), fmt.Errorf("command %s failed", c.GetName()))
		return
	}
	in, _ := context.Get(c.GetInputParam()).(string)
	context.Add(c.GetOutputParam(), in+c.suffix)
}

// TestChainPipesOutputToInput verifies each command's output becomes the
// next command's input, and the chain's final value sits under the shared
// output parameter.
func TestChainPipesOutputToInput(t *testing.T) {
	chain := cor.NewBaseChain("assemble")
	chain.AddCommand(newAppendCommand("first", "a"))
	chain.AddCommand(newAppendCommand("second", "b"))
	chain.AddCommand(newAppendCommand("third", "c"))

	execCtx := cor.NewBaseContext()
	execCtx.Add(cor.CtxIn, "_")
	chain.Execute(execCtx)

	require.Empty(t, execCtx.GetErrors())
	assert.Equal(t, "_abc", execCtx.Get(cor.CtxOut))
}

// TestChainHaltsOnError verifies execution stops at the failing command and
// its error is recorded under the command's name.
func TestChainHaltsOnError(t *testing.T) {
	first := newAppendCommand("first", "a")
	broken := newAppendCommand("broken", "b")
	broken.fail = true
	last := newAppendCommand("last", "c")

	chain := cor.NewBaseChain("halting")
	chain.AddCommand(first)
	chain.AddCommand(broken)
	chain.AddCommand(last)

	execCtx := cor.NewBaseContext()
	execCtx.Add(cor.CtxIn, "_")
	chain.Execute(execCtx)

	errs := execCtx.GetErrors()
	require.Len(t, errs, 1)
	assert.Error(t, errs["broken"])
	assert.True(t, first.ran)
	assert.False(t, last.ran, "commands after the failure must not run")
}

// TestChainContinueOnFailure verifies the continue flag lets later commands
// run even though an earlier one failed.
func TestChainContinueOnFailure(t *testing.T) {
	broken := newAppendCommand("broken", "a")
	broken.fail = true
	last := newAppendCommand("last", "b")

	chain := cor.NewBaseChain("tolerant")
	chain.ContinueOnFailure(true)
	chain.AddCommand(broken)
	chain.AddCommand(last)

	execCtx := cor.NewBaseContext()
	execCtx.Add(cor.CtxIn, "_")
	chain.Execute(execCtx)

	assert.True(t, last.ran)
	assert.Len(t, execCtx.GetErrors(), 1)
}

// TestChainMissingInput verifies a command whose input parameter was never
// populated records an error instead of executing.
func TestChainMissingInput(t *testing.T) {
	cmd := newAppendCommand("first", "a")
	chain := cor.NewBaseChain("empty-input")
	chain.AddCommand(cmd)

	execCtx := cor.NewBaseContext()
	chain.Execute(execCtx)

	assert.False(t, cmd.ran)
	require.Len(t, execCtx.GetErrors(), 1)
	assert.Error(t, execCtx.GetErrors()["first"])
}
