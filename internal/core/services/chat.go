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

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/viajescout/viaje-scout/internal/cloud"
)

// ChatService answers free-text questions about the places the user has
// already scouted. The persisted history is serialized into the prompt as
// context, so answers stay grounded in what was actually saved.
type ChatService struct {
	model          *cloud.QuotaAwareGenerativeAIModel
	history        *HistoryService
	promptTemplate *template.Template

	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

func NewChatService(
	meter metric.Meter,
	model *cloud.QuotaAwareGenerativeAIModel,
	history *HistoryService,
	prompt *template.Template) *ChatService {
	out := &ChatService{
		model:          model,
		history:        history,
		promptTemplate: prompt,
	}
	out.inputTokenCounter, _ = meter.Int64Counter("chat.gemini.token.input")
	out.outputTokenCounter, _ = meter.Int64Counter("chat.gemini.token.output")
	out.retryCounter, _ = meter.Int64Counter("chat.gemini.retry")
	return out
}

// Answer renders the chat prompt with the user's question and the current
// history, then asks the chat model.
func (c *ChatService) Answer(ctx context.Context, question string) (string, error) {
	records, err := c.history.List(ctx)
	if err != nil {
		return "", fmt.Errorf("load history for chat: %w", err)
	}
	historyJson, err := json.Marshal(records)
	if err != nil {
		return "", err
	}

	vocabulary := map[string]string{
		"QUESTION": question,
		"HISTORY":  string(historyJson),
	}
	var doc bytes.Buffer
	if err := c.promptTemplate.Execute(&doc, vocabulary); err != nil {
		return "", err
	}

	return cloud.GenerateMultiModalResponse(
		ctx,
		c.inputTokenCounter,
		c.outputTokenCounter,
		c.retryCounter,
		0,
		c.model,
		cloud.NewTextPart(doc.String()))
}
