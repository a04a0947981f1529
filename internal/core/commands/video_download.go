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

// Package commands provides the concrete implementations of the Chain of
// Responsibility Command interface that make up the video analysis
// pipeline: download, upload, extraction, normalization, enrichment,
// archival, and cleanup.
package commands

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/h2non/filetype"

	"github.com/viajescout/viaje-scout/internal/core/cor"
)

const (
	downloadTempPrefix = "scout-download-"
	fallbackMIMEType   = "video/mp4"
)

// LocalMedia describes a downloaded video on the local filesystem, passed
// between pipeline commands.
type LocalMedia struct {
	Path      string
	MIMEType  string
	SourceURL string
}

// GetSourceURLParameterName returns the context key holding the original
// video URL, so later commands (normalization) can stamp it onto records.
func GetSourceURLParameterName() string {
	return "__SOURCE_URL__"
}

// GetLocalMediaParameterName returns the context key under which the
// downloaded file stays addressable after later commands overwrite the
// chain's piped output.
func GetLocalMediaParameterName() string {
	return "__LOCAL_MEDIA__"
}

// VideoDownload fetches a short-form video with yt-dlp. The input is the
// video page URL; the output is a LocalMedia pointing at the downloaded
// file in a fresh temp directory.
type VideoDownload struct {
	cor.BaseCommand
	commandPath string
	format      string
	timeout     time.Duration
}

func NewVideoDownload(name string, commandPath string, format string, timeout time.Duration) *VideoDownload {
	return &VideoDownload{
		BaseCommand: *cor.NewBaseCommand(name),
		commandPath: commandPath,
		format:      format,
		timeout:     timeout,
	}
}

// Execute runs yt-dlp with a hard deadline. yt-dlp picks the final file
// name from its output template, so the command globs the temp directory
// afterwards; zero files means the download failed even if the process
// exited cleanly.
func (c *VideoDownload) Execute(context cor.Context) {
	sourceURL := context.Get(c.GetInputParam()).(string)

	tempDir, err := os.MkdirTemp("", downloadTempPrefix)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	ctx, cancel := contextWithTimeout(context, c.timeout)
	defer cancel()

	outputTemplate := filepath.Join(tempDir, "video.%(ext)s")
	cmd := exec.CommandContext(ctx, c.commandPath,
		"-f", c.format,
		"-o", outputTemplate,
		"--no-playlist",
		sourceURL,
	)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("error running downloader for %s: %w", sourceURL, err))
		return
	}

	matches, err := filepath.Glob(filepath.Join(tempDir, "video.*"))
	if err != nil || len(matches) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("downloader produced no file for %s", sourceURL))
		return
	}

	localPath := matches[0]
	context.AddTempFile(localPath)

	media := &LocalMedia{
		Path:      localPath,
		MIMEType:  sniffMIMEType(localPath),
		SourceURL: sourceURL,
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetSourceURLParameterName(), sourceURL)
	context.Add(GetLocalMediaParameterName(), media)
	context.Add(c.GetOutputParam(), media)
}

// sniffMIMEType inspects the file's magic bytes. Short-form platforms serve
// mp4 almost exclusively, so unknown content falls back to video/mp4 rather
// than failing the pipeline.
func sniffMIMEType(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return fallbackMIMEType
	}
	defer func() { _ = file.Close() }()

	head := make([]byte, 261)
	n, _ := file.Read(head)
	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return fallbackMIMEType
	}
	return kind.MIME.Value
}
