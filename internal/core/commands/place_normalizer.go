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

	"github.com/viajescout/viaje-scout/internal/core/cor"
	"github.com/viajescout/viaje-scout/internal/core/model"
)

// PlaceNormalizer converts the raw model text into canonical PlaceRecords.
// Individual malformed items are tolerated; only a payload with no usable
// JSON at all fails the command, which the HTTP layer reports as an
// unprocessable analysis.
type PlaceNormalizer struct {
	cor.BaseCommand
}

func NewPlaceNormalizer(name string) *PlaceNormalizer {
	return &PlaceNormalizer{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *PlaceNormalizer) Execute(context cor.Context) {
	raw := context.Get(c.GetInputParam()).(string)

	sourceURL := ""
	if v := context.Get(GetSourceURLParameterName()); v != nil {
		sourceURL = v.(string)
	}

	records, err := model.NormalizePlaces(raw, sourceURL)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("no places could be read from model output: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), records)
}
