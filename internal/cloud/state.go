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

package cloud

import (
	"context"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/genai"
	"googlemaps.github.io/maps"
)

// Environment variables carrying credentials. Only the Gemini key is
// required: every other integration degrades to a reduced feature set when
// its credential is absent, so a laptop with a single API key can still run
// the full analysis loop.
const (
	EnvGeminiAPIKey      = "GEMINI_API_KEY"
	EnvMapsAPIKey        = "MAPS_API_KEY"
	EnvPhotoSearchAPIKey = "PHOTO_SEARCH_API_KEY"
	EnvPhotoSearchCx     = "PHOTO_SEARCH_CX"
	EnvSheetID           = "SHEET_ID"
	EnvSheetsCredentials = "SHEETS_CREDENTIALS_JSON"
)

// ServiceClients is the dependency container for every external Google
// service the scout talks to. It is built once at startup and shared by all
// request handlers. Nil fields mean the corresponding credential was not
// provided and the feature is disabled.
type ServiceClients struct {
	GenAIClient         *genai.Client          // Gemini: file upload + content generation.
	SheetsService       *sheets.Service        // Spreadsheet-backed place history. Nil without SHEET_ID.
	SheetID             string                 // The spreadsheet to persist history into.
	CustomSearchService *customsearch.Service  // Image search for place photos. Nil without a search key.
	PhotoSearchCx       string                 // The programmable search engine id for photo lookups.
	MapsClient          *maps.Client           // Geocoding. Nil without MAPS_API_KEY.
	StorageClient       *storage.Client        // Optional media archive. Nil without a project id.
	AgentModels         map[string]*QuotaAwareGenerativeAIModel
}

// Close releases the client connections that hold them. The genai, sheets
// and customsearch clients are plain HTTP and have nothing to close.
func (c *ServiceClients) Close() {
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
}

// NewCloudServiceClients builds the service container from the config and
// credential environment variables. Only a missing Gemini key is fatal;
// everything else logs a warning and leaves its client nil so the caller
// can fall back (local history store, skipped geocoding, no photos).
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv(EnvGeminiAPIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	clients := &ServiceClients{
		GenAIClient: gc,
		SheetID:     os.Getenv(EnvSheetID),
		AgentModels: make(map[string]*QuotaAwareGenerativeAIModel),
	}

	if clients.SheetID != "" {
		var opts []option.ClientOption
		if creds := os.Getenv(EnvSheetsCredentials); creds != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(creds)), option.WithScopes(sheets.SpreadsheetsScope))
		}
		ss, err := sheets.NewService(ctx, opts...)
		if err != nil {
			slog.Warn("sheets client unavailable, history will be kept in memory", "error", err)
		} else {
			clients.SheetsService = ss
		}
	} else {
		slog.Warn("SHEET_ID not set, history will be kept in memory")
	}

	if key := os.Getenv(EnvMapsAPIKey); key != "" {
		mc, err := maps.NewClient(maps.WithAPIKey(key))
		if err != nil {
			slog.Warn("maps client unavailable, geocoding disabled", "error", err)
		} else {
			clients.MapsClient = mc
		}
	} else {
		slog.Warn("MAPS_API_KEY not set, geocoding disabled")
	}

	if key := os.Getenv(EnvPhotoSearchAPIKey); key != "" {
		cs, err := customsearch.NewService(ctx, option.WithAPIKey(key))
		if err != nil {
			slog.Warn("custom search client unavailable, photo lookup disabled", "error", err)
		} else {
			clients.CustomSearchService = cs
			clients.PhotoSearchCx = os.Getenv(EnvPhotoSearchCx)
		}
	} else {
		slog.Warn("PHOTO_SEARCH_API_KEY not set, photo lookup disabled")
	}

	if config.Application.GoogleProjectId != "" && config.Storage.ArchiveBucket != "" {
		sc, err := storage.NewClient(ctx)
		if err != nil {
			slog.Warn("storage client unavailable, media archival disabled", "error", err)
		} else {
			clients.StorageClient = sc
		}
	}

	// Bind each configured model role to a rate-limited handle.
	for amKey, values := range config.AgentModels {
		model := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
		}
		clients.AgentModels[amKey] = NewQuotaAwareModel(model, values.Model, gc.Models, values.RateLimit)
	}

	return clients, nil
}
