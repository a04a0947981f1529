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
	"log/slog"

	"github.com/viajescout/viaje-scout/internal/core/cor"
	"google.golang.org/genai"
)

// MediaCleanup deletes the uploaded video from the Gemini Files API once
// the analysis is done. The Files API has per-project storage quota, so
// leaking uploads would eventually fail every analysis. Deletion errors
// are logged but never fail the chain; the records are already extracted.
type MediaCleanup struct {
	cor.BaseCommand
	client *genai.Client
}

func NewMediaCleanup(name string, client *genai.Client) *MediaCleanup {
	return &MediaCleanup{BaseCommand: *cor.NewBaseCommand(name), client: client}
}

// IsExecutable only requires the uploaded file handle; the piped input is
// passed through untouched.
func (v *MediaCleanup) IsExecutable(context cor.Context) bool {
	return context != nil && context.Get(GetVideoFileParameterName()) != nil
}

func (v *MediaCleanup) Execute(context cor.Context) {
	records := context.Get(v.GetInputParam())

	if file, ok := context.Get(GetVideoFileParameterName()).(*genai.File); ok && file != nil {
		if _, err := v.client.Files.Delete(context.GetContext(), file.Name, nil); err != nil {
			slog.Warn("failed to delete uploaded media file", "file", file.Name, "error", err)
		}
	}

	v.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(v.GetOutputParam(), records)
}
