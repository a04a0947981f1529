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
	"log/slog"
	"path"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/viajescout/viaje-scout/internal/cloud"
	"github.com/viajescout/viaje-scout/internal/core/cor"
)

// MediaArchive copies the downloaded video into a GCS bucket for later
// reprocessing. Archival is best-effort: a failed upload logs a warning and
// the pipeline continues, since the analysis result does not depend on it.
type MediaArchive struct {
	cor.BaseCommand
	client *storage.Client
	bucket string
}

func NewMediaArchive(name string, client *storage.Client, bucket string) *MediaArchive {
	return &MediaArchive{BaseCommand: *cor.NewBaseCommand(name), client: client, bucket: bucket}
}

// IsExecutable skips the command entirely when no bucket or client is
// configured, rather than failing the chain.
func (c *MediaArchive) IsExecutable(context cor.Context) bool {
	return context != nil && context.Get(c.GetInputParam()) != nil
}

func (c *MediaArchive) Execute(context cor.Context) {
	records := context.Get(c.GetInputParam())

	if c.client != nil && c.bucket != "" {
		if media, ok := context.Get(GetLocalMediaParameterName()).(*LocalMedia); ok && media != nil {
			obj := cloud.GCSObject{
				Bucket:   c.bucket,
				Name:     fmt.Sprintf("analyzed/%s%s", uuid.NewString(), path.Ext(media.Path)),
				MIMEType: media.MIMEType,
			}
			if err := cloud.ArchiveFile(context.GetContext(), c.client, media.Path, obj); err != nil {
				slog.Warn("media archive failed", "bucket", c.bucket, "error", err)
			} else {
				slog.Info("media archived", "uri", obj.URI())
			}
		}
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), records)
}
