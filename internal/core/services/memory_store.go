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
	"fmt"
	"sync"

	"github.com/viajescout/viaje-scout/internal/core/model"
)

// MemoryStore is the in-process PlaceStore, used as the fallback when the
// spreadsheet is unreachable and as the only store when no sheet is
// configured. Contents do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*model.PlaceRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make([]*model.PlaceRecord, 0)}
}

func (m *MemoryStore) List(_ context.Context) ([]*model.PlaceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.PlaceRecord, len(m.records))
	for i, rec := range m.records {
		clone := *rec
		out[i] = &clone
	}
	return out, nil
}

func (m *MemoryStore) Append(_ context.Context, records []*model.PlaceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		clone := *rec
		m.records = append(m.records, &clone)
	}
	return nil
}

func (m *MemoryStore) Update(_ context.Context, record *model.PlaceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := record.NormalizedName()
	for i, rec := range m.records {
		if rec.NormalizedName() == key {
			clone := *record
			m.records[i] = &clone
			return nil
		}
	}
	return fmt.Errorf("no stored place named %q", record.PlaceName)
}
