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

package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viajescout/viaje-scout/internal/core/model"
	"github.com/viajescout/viaje-scout/internal/core/services"
)

func newRecord(name string, score float64) *model.PlaceRecord {
	rec := model.NewPlaceRecord()
	rec.PlaceName = name
	rec.Score = score
	return rec
}

// brokenStore fails every operation, standing in for an unreachable
// spreadsheet.
type brokenStore struct{}

func (brokenStore) List(context.Context) ([]*model.PlaceRecord, error) {
	return nil, fmt.Errorf("spreadsheet unreachable")
}

func (brokenStore) Append(context.Context, []*model.PlaceRecord) error {
	return fmt.Errorf("spreadsheet unreachable")
}

func (brokenStore) Update(context.Context, *model.PlaceRecord) error {
	return fmt.Errorf("spreadsheet unreachable")
}

// TestUpsertAppendsNewPlaces verifies unknown places land in insertion
// order with a review count of one.
func TestUpsertAppendsNewPlaces(t *testing.T) {
	store := services.NewMemoryStore()
	history := services.NewHistoryService(store, store)

	status, err := history.Upsert(context.Background(), []*model.PlaceRecord{
		newRecord("Mercado de San Juan", 4.5),
		newRecord("Xochimilco", 4.0),
	})
	require.NoError(t, err)
	assert.Equal(t, services.StatusSaved, status)

	records, err := history.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Mercado de San Juan", records[0].PlaceName)
	assert.Equal(t, "Xochimilco", records[1].PlaceName)
	assert.Equal(t, 1, records[0].ReviewCount)
}

// TestUpsertMergesByName verifies a second observation of a known place
// folds into the existing row: running-average score, bumped review count,
// and no duplicate row.
func TestUpsertMergesByName(t *testing.T) {
	store := services.NewMemoryStore()
	history := services.NewHistoryService(store, store)
	ctx := context.Background()

	_, err := history.Upsert(ctx, []*model.PlaceRecord{newRecord("Mercado de San Juan", 4.0)})
	require.NoError(t, err)

	// Same place, different casing and padding, should still match.
	update := newRecord("  mercado de san juan ", 5.0)
	update.Summary = "Mariscos frescos a buen precio."
	_, err = history.Upsert(ctx, []*model.PlaceRecord{update})
	require.NoError(t, err)

	records, err := history.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 4.5, records[0].Score, 0.0001)
	assert.Equal(t, 2, records[0].ReviewCount)
	assert.Equal(t, "Mercado de San Juan", records[0].PlaceName, "stored name wins over incoming variants")
}

// TestUpsertBackfillsEmptyFields verifies merge only fills holes: existing
// enrichment data is never overwritten by a later observation.
func TestUpsertBackfillsEmptyFields(t *testing.T) {
	store := services.NewMemoryStore()
	history := services.NewHistoryService(store, store)
	ctx := context.Background()

	first := newRecord("Bellas Artes", 4.0)
	first.PhotoUrl = "https://img.example/bellas-artes.jpg"
	_, err := history.Upsert(ctx, []*model.PlaceRecord{first})
	require.NoError(t, err)

	second := newRecord("Bellas Artes", 4.0)
	second.PhotoUrl = "https://img.example/other.jpg"
	second.Summary = "Palacio de mármol en el centro."
	second.Lat = 19.4352
	second.Lng = -99.1412
	_, err = history.Upsert(ctx, []*model.PlaceRecord{second})
	require.NoError(t, err)

	records, err := history.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://img.example/bellas-artes.jpg", records[0].PhotoUrl, "existing photo is kept")
	assert.Equal(t, "Palacio de mármol en el centro.", records[0].Summary, "empty summary is backfilled")
	assert.True(t, records[0].HasCoordinates(), "missing coordinates are backfilled")
}

// TestUpsertDuplicateWithinBatch verifies a batch mentioning the same place
// twice produces one merged row, not two.
func TestUpsertDuplicateWithinBatch(t *testing.T) {
	store := services.NewMemoryStore()
	history := services.NewHistoryService(store, store)

	_, err := history.Upsert(context.Background(), []*model.PlaceRecord{
		newRecord("Coyoacán", 3.0),
		newRecord("Coyoacán", 5.0),
	})
	require.NoError(t, err)

	records, err := history.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 4.0, records[0].Score, 0.0001)
	assert.Equal(t, 2, records[0].ReviewCount)
}

// TestUpsertFallsBackWhenPrimaryFails verifies writes survive a dead
// primary store: they land in the fallback and the caller sees the
// degraded status.
func TestUpsertFallsBackWhenPrimaryFails(t *testing.T) {
	fallback := services.NewMemoryStore()
	history := services.NewHistoryService(brokenStore{}, fallback)
	ctx := context.Background()

	status, err := history.Upsert(ctx, []*model.PlaceRecord{newRecord("Tepoztlán", 4.2)})
	require.NoError(t, err)
	assert.Equal(t, services.StatusSavedLocal, status)

	// List also degrades to the fallback copy.
	records, err := history.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Tepoztlán", records[0].PlaceName)
}

// TestUpsertEmptyBatch verifies an empty batch is a no-op success.
func TestUpsertEmptyBatch(t *testing.T) {
	store := services.NewMemoryStore()
	history := services.NewHistoryService(store, store)

	status, err := history.Upsert(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, services.StatusSaved, status)
}
