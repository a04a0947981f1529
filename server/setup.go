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

// Package main contains the setup and initialization logic for the place
// scout server. A centralized state manager holds the shared dependencies:
// configuration, Google service clients, the analysis pipeline, the history
// service, and the chat service.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"text/template"

	"go.opentelemetry.io/otel"

	"github.com/viajescout/viaje-scout/internal/cloud"
	"github.com/viajescout/viaje-scout/internal/core/model"
	"github.com/viajescout/viaje-scout/internal/core/services"
	"github.com/viajescout/viaje-scout/internal/core/workflow"
)

// Logical model roles expected in the agent_models config map.
const (
	CriticModelName = "critic"
	ChatModelName   = "chat"
)

// StateManager holds all shared dependencies for the application, avoiding
// globals scattered across handlers.
type StateManager struct {
	config           *cloud.Config
	cloud            *cloud.ServiceClients
	analysisPipeline *workflow.AnalysisWorkflow
	historyService   *services.HistoryService
	chatService      *services.ChatService
}

// state is the single StateManager instance for the process.
var state = &StateManager{}

// SetupOS points the configuration loader at the configs directory and the
// local runtime unless already set in the environment.
func SetupOS() (err error) {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

// GetConfig loads the application configuration once and caches it.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to set up config environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.config = config
	}
	return state.config
}

// InitState builds the application state: service clients, the analysis
// pipeline, the history service (sheet-backed when configured, in-memory
// otherwise), and the chat service.
func InitState(ctx context.Context) {
	config := GetConfig()

	for _, category := range config.Categories {
		model.RegisterCategoryAliases(category.Name, category.Aliases)
	}

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	state.analysisPipeline = workflow.NewAnalysisPipeline(config, cloudClients, CriticModelName)

	memoryStore := services.NewMemoryStore()
	var primary services.PlaceStore = memoryStore
	if cloudClients.SheetsService != nil {
		primary = services.NewSheetStore(cloudClients.SheetsService, cloudClients.SheetID, config.History.SheetName)
	} else {
		slog.Info("running with in-memory place history")
	}
	state.historyService = services.NewHistoryService(primary, memoryStore)

	chatTemplate, err := template.New("chat-template").Parse(config.PromptTemplates.ChatPrompt)
	if err != nil {
		panic(err)
	}
	state.chatService = services.NewChatService(
		otel.Meter("service.chat.meter"),
		cloudClients.AgentModels[ChatModelName],
		state.historyService,
		chatTemplate)
}
