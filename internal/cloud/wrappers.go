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
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// rateLimitBackoff is how long to wait before the single retry after the
// API reports quota exhaustion.
const rateLimitBackoff = 3 * time.Second

// QuotaAwareGenerativeAIModel decorates a generative model with client-side
// rate limiting, so concurrent analysis requests queue locally instead of
// hammering the API into 429 responses. One bound model exists per logical
// role ("critic", "chat") and is shared by all requests.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig
	ModelName               string
	ModelHandle             *genai.Models
	RateLimit               *rate.Limiter
}

// NewQuotaAwareModel wraps a model configuration with a token-bucket
// limiter allowing requestsPerSecond calls with an equal burst.
func NewQuotaAwareModel(wrapped *genai.GenerateContentConfig, name string, modelHandle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             modelHandle,
		RateLimit:               rate.NewLimiter(rate.Every(time.Second), requestsPerSecond),
	}
}

// GenerateContent blocks until the local limiter admits the call, then
// invokes the model. If the API still answers with a rate-limit error the
// call is retried exactly once after a short backoff; a second rejection
// propagates so the caller can surface it as 429.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
	if err != nil && IsRateLimited(err) {
		slog.Warn("model rate limited, retrying once", "model", q.ModelName, "backoff", rateLimitBackoff)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(rateLimitBackoff):
		}
		return q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
	}
	return resp, err
}
