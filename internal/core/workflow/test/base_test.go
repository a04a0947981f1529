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

// Package workflow_test verifies the assembled analysis pipeline: command
// ordering, error keying, and halt behavior. TestMain loads the test
// configuration and telemetry once for the whole package; no live cloud
// credentials are required, so the pipeline is built against empty service
// clients and never reaches a real API.
package workflow_test

import (
	"context"
	"os"
	"testing"

	"github.com/viajescout/viaje-scout/internal/cloud"
	"github.com/viajescout/viaje-scout/internal/telemetry"
	test "github.com/viajescout/viaje-scout/internal/testutil"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var config *cloud.Config

const tName = "viaje-scout/tests/workflow"

var logger = otelslog.NewLogger(tName)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config = test.GetConfig()

	telemetry.SetupLogging()
	shutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		panic(err)
	}

	logger.Info("completed workflow test setup")

	exitCode := m.Run()

	if err := shutdown(ctx); err != nil {
		logger.Error("failed to shutdown telemetry", "error", err)
	}
	os.Exit(exitCode)
}
