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

// Package workflow assembles the pipeline commands into the end-to-end
// video analysis chain executed for each /analyze request.
package workflow

import (
	"text/template"
	"time"

	"github.com/viajescout/viaje-scout/internal/cloud"
	"github.com/viajescout/viaje-scout/internal/core/commands"
	"github.com/viajescout/viaje-scout/internal/core/cor"
	"github.com/viajescout/viaje-scout/internal/core/services"
	"google.golang.org/genai"
)

// Command names within the analysis chain. The HTTP layer maps errors
// recorded under these keys to distinct status codes.
const (
	CmdVideoDownload  = "video-download"
	CmdMediaUpload    = "media-upload"
	CmdPlaceExtractor = "extract-places"
	CmdPlaceNormalize = "normalize-places"
	CmdPlaceEnricher  = "enrich-places"
	CmdMediaArchive   = "archive-media"
	CmdMediaCleanup   = "cleanup-media"
)

// AnalysisWorkflow runs a video URL through download, upload, place
// extraction, normalization, enrichment, optional archival, and cleanup.
// The chain's final output is the enriched []*model.PlaceRecord.
type AnalysisWorkflow struct {
	cor.BaseCommand
	config           *cloud.Config
	genaiClient      *genai.Client
	genaiModel       *cloud.QuotaAwareGenerativeAIModel
	geocoder         services.Geocoder
	photoFinder      services.PhotoFinder
	analysisTemplate *template.Template
	chain            cor.Chain
}

func (w *AnalysisWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *AnalysisWorkflow) initializeChain(serviceClients *cloud.ServiceClients) {
	out := cor.NewBaseChain(w.GetName())

	out.AddCommand(commands.NewVideoDownload(
		CmdVideoDownload,
		w.config.Downloader.CommandPath,
		w.config.Downloader.Format,
		time.Duration(w.config.Downloader.TimeoutInSeconds)*time.Second))

	out.AddCommand(commands.NewMediaUpload(CmdMediaUpload, w.genaiClient))

	out.AddCommand(commands.NewPlaceExtractor(CmdPlaceExtractor, w.genaiModel, w.analysisTemplate))

	out.AddCommand(commands.NewPlaceNormalizer(CmdPlaceNormalize))

	out.AddCommand(commands.NewPlaceEnricher(
		CmdPlaceEnricher,
		w.geocoder,
		w.photoFinder,
		w.config.Application.ThreadPoolSize))

	out.AddCommand(commands.NewMediaArchive(
		CmdMediaArchive,
		serviceClients.StorageClient,
		w.config.Storage.ArchiveBucket))

	out.AddCommand(commands.NewMediaCleanup(CmdMediaCleanup, w.genaiClient))

	w.chain = out
}

// NewAnalysisPipeline builds the full analysis workflow from the config and
// the shared service clients. The geocoder and photo finder are nil when
// their credentials are absent; the enricher skips the missing lookups.
func NewAnalysisPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	agentModelName string) *AnalysisWorkflow {

	analysisTemplate, err := template.New("analysis-template").Parse(config.PromptTemplates.AnalysisPrompt)
	if err != nil {
		panic(err) // the app cannot run without a valid prompt template
	}

	var geocoder services.Geocoder
	if serviceClients.MapsClient != nil {
		geocoder = services.NewMapsGeocoder(
			serviceClients.MapsClient,
			time.Duration(config.Enrichment.GeocodeTimeoutInSeconds)*time.Second,
			time.Duration(config.Enrichment.GeocodeDelayInMillis)*time.Millisecond)
	}
	var photoFinder services.PhotoFinder
	if serviceClients.CustomSearchService != nil {
		photoFinder = services.NewCustomSearchPhotoFinder(
			serviceClients.CustomSearchService,
			serviceClients.PhotoSearchCx,
			time.Duration(config.Enrichment.PhotoTimeoutInSeconds)*time.Second)
	}

	pipeline := &AnalysisWorkflow{
		BaseCommand:      *cor.NewBaseCommand("analysis-pipeline"),
		config:           config,
		genaiClient:      serviceClients.GenAIClient,
		genaiModel:       serviceClients.AgentModels[agentModelName],
		geocoder:         geocoder,
		photoFinder:      photoFinder,
		analysisTemplate: analysisTemplate,
	}
	pipeline.initializeChain(serviceClients)
	return pipeline
}
