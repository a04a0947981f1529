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

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viajescout/viaje-scout/internal/core/workflow"
)

// TestChatRequestText verifies the chat body contract: "message" is the
// documented field, "question" is tolerated as an alias, and whitespace-only
// values count as missing.
func TestChatRequestText(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"message": "¿Dónde comí mariscos?"}`, "¿Dónde comí mariscos?"},
		{`{"question": "¿Dónde comí mariscos?"}`, "¿Dónde comí mariscos?"},
		{`{"message": "primero", "question": "segundo"}`, "primero"},
		{`{"message": "   "}`, ""},
		{`{}`, ""},
	}
	for _, tc := range cases {
		var req chatRequest
		require.NoError(t, json.Unmarshal([]byte(tc.body), &req), "body %s", tc.body)
		assert.Equal(t, tc.want, req.text(), "body %s", tc.body)
	}
}

// TestAnalysisErrorStatus verifies the pipeline-error to HTTP-status
// mapping: rate limits win, empty or unreadable extractions are
// unprocessable, everything else is a server error.
func TestAnalysisErrorStatus(t *testing.T) {
	status, _ := analysisErrorStatus(map[string]error{
		workflow.CmdPlaceExtractor: fmt.Errorf("googleapi: Error 429: RESOURCE_EXHAUSTED"),
	})
	assert.Equal(t, http.StatusTooManyRequests, status)

	status, _ = analysisErrorStatus(map[string]error{
		workflow.CmdPlaceNormalize: fmt.Errorf("no places could be read from model output: extraction found no places"),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = analysisErrorStatus(map[string]error{
		workflow.CmdVideoDownload: fmt.Errorf("error running downloader"),
	})
	assert.Equal(t, http.StatusInternalServerError, status)
}
