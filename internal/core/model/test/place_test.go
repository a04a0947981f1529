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

// Package model_test contains unit tests for the place data model: record
// construction and the coordinate/name helpers the enricher and history
// store depend on.
package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viajescout/viaje-scout/internal/core/model"
)

// TestNewPlaceRecord verifies that every new record gets a fresh identity
// and the documented defaults.
func TestNewPlaceRecord(t *testing.T) {
	a := model.NewPlaceRecord()
	b := model.NewPlaceRecord()

	assert.NotEmpty(t, a.Id)
	assert.NotEqual(t, a.Id, b.Id)
	assert.InDelta(t, time.Now().UnixMilli(), a.Timestamp, float64(time.Second.Milliseconds()))
	assert.Equal(t, "Otro", a.Category)
	assert.Equal(t, model.UnknownPlaceName, a.PlaceName)
	assert.Equal(t, model.UnknownPrice, a.PriceRange)
	assert.Equal(t, 1, a.ReviewCount)
}

// TestHasCoordinates verifies that zero means unresolved, for either axis.
func TestHasCoordinates(t *testing.T) {
	rec := model.NewPlaceRecord()
	assert.False(t, rec.HasCoordinates())

	rec.Lat = 19.4326
	assert.False(t, rec.HasCoordinates())

	rec.Lng = -99.1332
	assert.True(t, rec.HasCoordinates())
}

// TestNormalizedName verifies the dedup key is case- and
// whitespace-insensitive.
func TestNormalizedName(t *testing.T) {
	rec := model.NewPlaceRecord()
	rec.PlaceName = "  Mercado de San Juan "
	assert.Equal(t, "mercado de san juan", rec.NormalizedName())
}
