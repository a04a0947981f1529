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

package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/viajescout/viaje-scout/internal/cloud"
	"github.com/viajescout/viaje-scout/internal/core/cor"
	"github.com/viajescout/viaje-scout/internal/core/model"
	"google.golang.org/genai"
)

// PlaceExtractor asks the critic model to watch the uploaded video and
// emit the places it mentions as JSON. The raw model text goes into the
// context for the normalizer; no parsing happens here.
type PlaceExtractor struct {
	cor.BaseCommand
	generativeAIModel *cloud.QuotaAwareGenerativeAIModel
	promptTemplate    *template.Template

	geminiInputTokenCounter  metric.Int64Counter
	geminiOutputTokenCounter metric.Int64Counter
	geminiRetryCounter       metric.Int64Counter
}

func NewPlaceExtractor(
	name string,
	model *cloud.QuotaAwareGenerativeAIModel,
	prompt *template.Template) *PlaceExtractor {
	out := &PlaceExtractor{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: model,
		promptTemplate:    prompt,
	}

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.retry", out.GetName()))

	return out
}

// IsExecutable requires both the piped input and the uploaded file handle.
func (s *PlaceExtractor) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(GetVideoFileParameterName()) != nil
}

// Execute renders the extraction prompt (with the few-shot example JSON
// baked in) and runs the multimodal request against the video file.
func (s *PlaceExtractor) Execute(context cor.Context) {
	videoFile := context.Get(GetVideoFileParameterName()).(*genai.File)

	exampleJson, _ := json.Marshal(model.GetExtractionExample())
	vocabulary := map[string]string{
		"EXAMPLE_JSON": string(exampleJson),
	}

	var doc bytes.Buffer
	if err := s.promptTemplate.Execute(&doc, vocabulary); err != nil {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), err)
		return
	}

	contents := []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: doc.String()},
				{FileData: &genai.FileData{
					FileURI:  videoFile.URI,
					MIMEType: videoFile.MIMEType,
				}},
			},
			Role: "user",
		},
	}

	out, err := cloud.GenerateMultiModalResponse(
		context.GetContext(),
		s.geminiInputTokenCounter,
		s.geminiOutputTokenCounter,
		s.geminiRetryCounter,
		0,
		s.generativeAIModel,
		contents)
	if err != nil {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), fmt.Errorf("place extraction failed: %w", err))
		return
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(s.GetOutputParam(), out)
}
