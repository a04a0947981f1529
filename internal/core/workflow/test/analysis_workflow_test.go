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

package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viajescout/viaje-scout/internal/cloud"
	"github.com/viajescout/viaje-scout/internal/core/cor"
	"github.com/viajescout/viaje-scout/internal/core/workflow"
)

// TestPipelineBuildsWithoutCredentials verifies the pipeline constructs
// against empty service clients: missing geocoder, photo finder, and
// storage must not prevent startup.
func TestPipelineBuildsWithoutCredentials(t *testing.T) {
	pipeline := workflow.NewAnalysisPipeline(config, &cloud.ServiceClients{}, "critic")
	require.NotNil(t, pipeline)
	assert.Equal(t, "analysis-pipeline", pipeline.GetName())
}

// TestPipelineRequiresSourceURL verifies executing without a source URL
// halts at the first command and records the error under the download
// command's name, which is the key the HTTP layer maps to a status code.
func TestPipelineRequiresSourceURL(t *testing.T) {
	pipeline := workflow.NewAnalysisPipeline(config, &cloud.ServiceClients{}, "critic")

	execCtx := cor.NewBaseContext()
	defer execCtx.Close()
	pipeline.Execute(execCtx)

	errs := execCtx.GetErrors()
	require.Len(t, errs, 1)
	assert.Error(t, errs[workflow.CmdVideoDownload])
	assert.Nil(t, execCtx.Get(cor.CtxOut))
}

// TestPipelineHaltsOnDownloadFailure verifies a URL that cannot be
// downloaded stops the chain before any model call: the only recorded
// error belongs to the download command.
func TestPipelineHaltsOnDownloadFailure(t *testing.T) {
	pipeline := workflow.NewAnalysisPipeline(config, &cloud.ServiceClients{}, "critic")

	execCtx := cor.NewBaseContext()
	defer execCtx.Close()
	execCtx.Add(cor.CtxIn, "https://example.com/watch?v=does-not-exist")
	pipeline.Execute(execCtx)

	errs := execCtx.GetErrors()
	require.Len(t, errs, 1)
	assert.Error(t, errs[workflow.CmdVideoDownload])
}
