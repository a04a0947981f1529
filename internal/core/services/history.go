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
	"context"
	"log/slog"

	"github.com/viajescout/viaje-scout/internal/core/model"
)

// Save statuses reported to clients. StatusSavedLocal means the primary
// store rejected the write and the records live only in the in-process
// fallback until the next restart.
const (
	StatusSaved      = "saved"
	StatusSavedLocal = "saved_local"
)

// PlaceStore is the persistence abstraction behind the history service.
// Implementations keep rows in insertion order with at most one row per
// normalized place name.
type PlaceStore interface {
	// List returns all stored records in insertion order.
	List(ctx context.Context) ([]*model.PlaceRecord, error)
	// Append adds new rows at the end.
	Append(ctx context.Context, records []*model.PlaceRecord) error
	// Update replaces the row currently holding the same normalized name.
	Update(ctx context.Context, record *model.PlaceRecord) error
}

// HistoryService merges analyzed places into a persistent history. Writes
// are deduplicated by normalized place name: a record for an already-known
// place folds into the existing row instead of creating a duplicate.
type HistoryService struct {
	store    PlaceStore
	fallback PlaceStore
}

// NewHistoryService wires the primary store with an in-memory fallback used
// when the primary is unavailable. Pass the same store twice to run without
// a spreadsheet.
func NewHistoryService(store PlaceStore, fallback PlaceStore) *HistoryService {
	return &HistoryService{store: store, fallback: fallback}
}

// List returns the full history from the primary store, falling back to the
// local store when the primary read fails.
func (h *HistoryService) List(ctx context.Context) ([]*model.PlaceRecord, error) {
	records, err := h.store.List(ctx)
	if err != nil {
		slog.Warn("history read from primary store failed, serving local copy", "error", err)
		return h.fallback.List(ctx)
	}
	return records, nil
}

// Upsert merges the given records into the history. Known places (matched
// by normalized name) get a count-weighted running-average score, an
// incremented observation count, and a summary backfill when the stored row
// has none; unknown places are appended in input order as a single batch.
//
// The returned status is StatusSaved on success against the primary store,
// StatusSavedLocal when the primary failed and the records were kept in the
// in-memory fallback instead.
func (h *HistoryService) Upsert(ctx context.Context, records []*model.PlaceRecord) (string, error) {
	if len(records) == 0 {
		return StatusSaved, nil
	}

	if err := h.upsertInto(ctx, h.store, records); err != nil {
		slog.Warn("history write to primary store failed, saving locally", "error", err)
		if ferr := h.upsertInto(ctx, h.fallback, records); ferr != nil {
			return "", ferr
		}
		return StatusSavedLocal, nil
	}
	return StatusSaved, nil
}

func (h *HistoryService) upsertInto(ctx context.Context, store PlaceStore, records []*model.PlaceRecord) error {
	existing, err := store.List(ctx)
	if err != nil {
		return err
	}

	// The index is rebuilt per call: a batch can merge into rows it
	// appends itself when the same place appears twice. Pending rows are
	// merged in place and written once by the final Append.
	index := make(map[string]*model.PlaceRecord, len(existing))
	for _, rec := range existing {
		index[rec.NormalizedName()] = rec
	}

	var toAppend []*model.PlaceRecord
	pending := make(map[string]bool)
	for _, rec := range records {
		key := rec.NormalizedName()
		current, ok := index[key]
		if !ok {
			if rec.ReviewCount < 1 {
				rec.ReviewCount = 1
			}
			toAppend = append(toAppend, rec)
			index[key] = rec
			pending[key] = true
			continue
		}

		merged := mergeRecords(current, rec)
		*current = *merged
		if pending[key] {
			continue
		}
		if err := store.Update(ctx, merged); err != nil {
			return err
		}
	}

	if len(toAppend) > 0 {
		if err := store.Append(ctx, toAppend); err != nil {
			return err
		}
	}
	return nil
}

// mergeRecords folds a new observation into an existing row. The stored
// identity, photo, and coordinates win when present; the score becomes a
// running average weighted by how many observations the row has absorbed.
func mergeRecords(current, incoming *model.PlaceRecord) *model.PlaceRecord {
	merged := *current

	count := current.ReviewCount
	if count < 1 {
		count = 1
	}
	merged.Score = (current.Score*float64(count) + incoming.Score) / float64(count+1)
	merged.ReviewCount = count + 1

	if merged.Summary == "" {
		merged.Summary = incoming.Summary
	}
	if !merged.HasCoordinates() && incoming.HasCoordinates() {
		merged.Lat = incoming.Lat
		merged.Lng = incoming.Lng
	}
	if merged.PhotoUrl == "" {
		merged.PhotoUrl = incoming.PhotoUrl
	}
	if merged.MapsLink == "" {
		merged.MapsLink = incoming.MapsLink
	}
	if merged.Address == "" {
		merged.Address = incoming.Address
	}
	if merged.Website == "" {
		merged.Website = incoming.Website
	}
	return &merged
}
