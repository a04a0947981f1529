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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, plus the shared clients for the Google services
// the scout talks to (Gemini, Sheets, Maps, Custom Search, GCS).
//
// Configuration is hierarchical: a base .env.toml is loaded first, then an
// environment-specific overlay (.env.local.toml, .env.test.toml, ...) is
// merged on top of it.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings disables content blocking for all harm categories.
// Travel videos routinely trip the default filters (street food, nightlife,
// strong opinions about tourist traps), and the model output is consumed by
// our own normalizer rather than shown raw.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// PromptTemplates holds the text templates for the prompts sent to the
// GenAI models. Templates use Go text/template syntax.
type PromptTemplates struct {
	AnalysisPrompt string `toml:"analysis"` // The place-extraction prompt for video analysis.
	ChatPrompt     string `toml:"chat"`     // The prompt for the travel-history chat assistant.
}

// GenAiLLMModel represents the configuration for a single generative model,
// keyed by a logical role name (e.g. "critic", "chat") in the config file.
type GenAiLLMModel struct {
	Model              string  `toml:"model"`               // The model identifier (e.g. "gemini-2.0-flash").
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the model.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter.
	TopP               float32 `toml:"top_p"`               // The top_p parameter.
	TopK               float32 `toml:"top_k"`               // The top_k parameter.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of output tokens.
	OutputFormat       string  `toml:"output_format"`       // The desired output MIME type (e.g. "application/json").
	RateLimit          int     `toml:"rate_limit"`          // Requests per second allowed against this model.
}

// Downloader configures the external video download command (yt-dlp).
type Downloader struct {
	CommandPath      string `toml:"command_path"`       // Path to the yt-dlp binary.
	Format           string `toml:"format"`             // The yt-dlp format selector (e.g. "worst[ext=mp4]").
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Hard deadline for a single download.
}

// Enrichment configures the concurrent geocode/photo lookup stage.
type Enrichment struct {
	GeocodeTimeoutInSeconds int `toml:"geocode_timeout_in_seconds"` // Per-record geocoding deadline.
	PhotoTimeoutInSeconds   int `toml:"photo_timeout_in_seconds"`   // Per-record photo search deadline.
	GeocodeDelayInMillis    int `toml:"geocode_delay_in_millis"`    // Pause between geocode calls within one worker.
}

// History configures the spreadsheet-backed place history.
type History struct {
	SheetName string `toml:"sheet_name"` // Tab name within the spreadsheet (e.g. "Historial").
}

// Storage configures the optional media archive bucket. When the bucket is
// empty, downloaded videos are discarded after analysis.
type Storage struct {
	ArchiveBucket string `toml:"archive_bucket"`
}

// Category defines one canonical place category and the words the
// normalizer should map onto it.
type Category struct {
	Name    string   `toml:"name"`    // The canonical name (e.g. "Comida").
	Aliases []string `toml:"aliases"` // Alternate spellings mapped to this category.
}

// Config is the root container for all application settings.
type Config struct {
	Application struct {
		Name            string `toml:"name"`              // The application name, used in logs and telemetry.
		Port            int    `toml:"port"`              // The HTTP listen port.
		GoogleProjectId string `toml:"google_project_id"` // Optional; enables telemetry export and GCS archival.
		GoogleLocation  string `toml:"location"`          // The Google Cloud location.
		ThreadPoolSize  int    `toml:"thread_pool_size"`  // Worker count for the enrichment pool.
	} `toml:"application"`
	Storage         Storage                  `toml:"storage"`
	Downloader      Downloader               `toml:"downloader"`
	Enrichment      Enrichment               `toml:"enrichment"`
	History         History                  `toml:"history"`
	PromptTemplates PromptTemplates          `toml:"prompt_templates"`
	AgentModels     map[string]GenAiLLMModel `toml:"agent_models"` // Generative models keyed by role ("critic", "chat").
	Categories      map[string]Category      `toml:"categories"`   // Canonical place categories keyed by a logical name.
}

// NewConfig creates an initialized Config. The maps must be allocated up
// front so the TOML decoder can populate them.
func NewConfig() *Config {
	return &Config{
		AgentModels: make(map[string]GenAiLLMModel),
		Categories:  make(map[string]Category),
	}
}
