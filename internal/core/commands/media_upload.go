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
	"fmt"
	"path/filepath"
	"time"

	"github.com/viajescout/viaje-scout/internal/core/cor"
	"google.golang.org/genai"
)

const (
	// filePollInterval matches the Files API's documented processing
	// cadence; filePollMaxAttempts caps the wait at ten minutes so a
	// stuck file cannot hang a request forever.
	filePollInterval    = 2 * time.Second
	filePollMaxAttempts = 300
)

// GetVideoFileParameterName returns the context key holding the uploaded
// genai file handle, shared by the extractor and cleanup commands.
func GetVideoFileParameterName() string {
	return "__VIDEO_FILE__"
}

// MediaUpload pushes the downloaded video into the Gemini Files API and
// waits for server-side processing to finish. Multimodal generation can
// only reference files in the ACTIVE state.
type MediaUpload struct {
	cor.BaseCommand
	client *genai.Client
}

func NewMediaUpload(name string, genaiClient *genai.Client) *MediaUpload {
	return &MediaUpload{BaseCommand: *cor.NewBaseCommand(name), client: genaiClient}
}

// Execute uploads the local file, then polls its state until it leaves
// PROCESSING or the attempt cap is hit.
func (v *MediaUpload) Execute(context cor.Context) {
	media := context.Get(v.GetInputParam()).(*LocalMedia)

	file, err := v.client.Files.UploadFromPath(context.GetContext(), media.Path, &genai.UploadFileConfig{
		DisplayName: filepath.Base(media.Path),
		MIMEType:    media.MIMEType,
	})
	if err != nil {
		v.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(v.GetName(), fmt.Errorf("failed to upload media file: %w", err))
		return
	}

	attempts := 0
	for file.State == genai.FileStateProcessing {
		attempts++
		if attempts > filePollMaxAttempts {
			v.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(v.GetName(), fmt.Errorf("file %s still processing after %d polls", file.Name, filePollMaxAttempts))
			return
		}
		time.Sleep(filePollInterval)
		if file, err = v.client.Files.Get(context.GetContext(), file.Name, nil); err != nil {
			v.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(v.GetName(), fmt.Errorf("failed to poll file state: %w", err))
			return
		}
	}

	if file.State == genai.FileStateFailed {
		v.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(v.GetName(), fmt.Errorf("file service failed to process %s", media.Path))
		return
	}

	v.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetVideoFileParameterName(), file)
	context.Add(v.GetOutputParam(), file)
}
