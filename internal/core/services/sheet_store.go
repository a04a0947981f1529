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
	"strconv"
	"strings"
	"sync"

	"google.golang.org/api/sheets/v4"

	"github.com/viajescout/viaje-scout/internal/core/model"
)

// placeColumn binds one spreadsheet column to one PlaceRecord field. The
// columns slice below is the single source of truth for the sheet schema:
// both encoding and decoding walk it, so a field added here shows up in
// reads, appends, and updates at once.
type placeColumn struct {
	header string
	get    func(r *model.PlaceRecord) interface{}
	set    func(r *model.PlaceRecord, v string)
}

var placeColumns = []placeColumn{
	{"id", func(r *model.PlaceRecord) interface{} { return r.Id }, func(r *model.PlaceRecord, v string) { r.Id = v }},
	{"timestamp", func(r *model.PlaceRecord) interface{} { return r.Timestamp }, func(r *model.PlaceRecord, v string) { r.Timestamp, _ = strconv.ParseInt(v, 10, 64) }},
	{"category", func(r *model.PlaceRecord) interface{} { return r.Category }, func(r *model.PlaceRecord, v string) { r.Category = v }},
	{"placename", func(r *model.PlaceRecord) interface{} { return r.PlaceName }, func(r *model.PlaceRecord, v string) { r.PlaceName = v }},
	{"estimatedlocation", func(r *model.PlaceRecord) interface{} { return r.EstimatedLocation }, func(r *model.PlaceRecord, v string) { r.EstimatedLocation = v }},
	{"address", func(r *model.PlaceRecord) interface{} { return r.Address }, func(r *model.PlaceRecord, v string) { r.Address = v }},
	{"lat", func(r *model.PlaceRecord) interface{} { return r.Lat }, func(r *model.PlaceRecord, v string) { r.Lat, _ = strconv.ParseFloat(v, 64) }},
	{"lng", func(r *model.PlaceRecord) interface{} { return r.Lng }, func(r *model.PlaceRecord, v string) { r.Lng, _ = strconv.ParseFloat(v, 64) }},
	{"pricerange", func(r *model.PlaceRecord) interface{} { return r.PriceRange }, func(r *model.PlaceRecord, v string) { r.PriceRange = v }},
	{"summary", func(r *model.PlaceRecord) interface{} { return r.Summary }, func(r *model.PlaceRecord, v string) { r.Summary = v }},
	{"score", func(r *model.PlaceRecord) interface{} { return r.Score }, func(r *model.PlaceRecord, v string) { r.Score, _ = strconv.ParseFloat(v, 64) }},
	{"confidencelevel", func(r *model.PlaceRecord) interface{} { return r.ConfidenceLevel }, func(r *model.PlaceRecord, v string) { r.ConfidenceLevel = v }},
	{"istouristtrap", func(r *model.PlaceRecord) interface{} { return r.IsTouristTrap }, func(r *model.PlaceRecord, v string) { r.IsTouristTrap, _ = strconv.ParseBool(v) }},
	{"photourl", func(r *model.PlaceRecord) interface{} { return r.PhotoUrl }, func(r *model.PlaceRecord, v string) { r.PhotoUrl = v }},
	{"mapslink", func(r *model.PlaceRecord) interface{} { return r.MapsLink }, func(r *model.PlaceRecord, v string) { r.MapsLink = v }},
	{"website", func(r *model.PlaceRecord) interface{} { return r.Website }, func(r *model.PlaceRecord, v string) { r.Website = v }},
	{"sourceurl", func(r *model.PlaceRecord) interface{} { return r.SourceUrl }, func(r *model.PlaceRecord, v string) { r.SourceUrl = v }},
	{"reviewcount", func(r *model.PlaceRecord) interface{} { return r.ReviewCount }, func(r *model.PlaceRecord, v string) { r.ReviewCount, _ = strconv.Atoi(v) }},
}

// SheetStore persists places as rows of a Google Sheet, one row per place,
// with a header row naming the columns. Reads are header-keyed rather than
// positional, so a sheet whose columns were manually reordered still loads.
type SheetStore struct {
	service   *sheets.Service
	sheetID   string
	sheetName string

	mu       sync.Mutex
	rowIndex map[string]int // normalized place name -> 1-based sheet row
}

func NewSheetStore(service *sheets.Service, sheetID string, sheetName string) *SheetStore {
	return &SheetStore{
		service:   service,
		sheetID:   sheetID,
		sheetName: sheetName,
		rowIndex:  make(map[string]int),
	}
}

func headerRow() []interface{} {
	out := make([]interface{}, len(placeColumns))
	for i, col := range placeColumns {
		out[i] = col.header
	}
	return out
}

func rowFromRecord(rec *model.PlaceRecord) []interface{} {
	out := make([]interface{}, len(placeColumns))
	for i, col := range placeColumns {
		out[i] = col.get(rec)
	}
	return out
}

// recordFromRow decodes one sheet row using the header positions observed
// in the sheet itself. Cells beyond the row's length read as empty.
func recordFromRow(header map[string]int, row []interface{}) *model.PlaceRecord {
	rec := &model.PlaceRecord{}
	for _, col := range placeColumns {
		idx, ok := header[col.header]
		if !ok || idx >= len(row) {
			continue
		}
		col.set(rec, fmt.Sprint(row[idx]))
	}
	return rec
}

// List reads the whole sheet, decodes every data row, and refreshes the
// name-to-row index used by Update.
func (s *SheetStore) List(ctx context.Context) ([]*model.PlaceRecord, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.sheetID, s.sheetName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", s.sheetName, err)
	}
	if len(resp.Values) == 0 {
		return []*model.PlaceRecord{}, nil
	}

	header := make(map[string]int, len(resp.Values[0]))
	for i, cell := range resp.Values[0] {
		header[strings.ToLower(strings.TrimSpace(fmt.Sprint(cell)))] = i
	}

	records := make([]*model.PlaceRecord, 0, len(resp.Values)-1)
	index := make(map[string]int, len(resp.Values)-1)
	for i, row := range resp.Values[1:] {
		rec := recordFromRow(header, row)
		if rec.PlaceName == "" {
			continue
		}
		records = append(records, rec)
		index[rec.NormalizedName()] = i + 2 // 1-based, after the header row
	}

	s.mu.Lock()
	s.rowIndex = index
	s.mu.Unlock()
	return records, nil
}

// Append writes all new records in a single batched append.
func (s *SheetStore) Append(ctx context.Context, records []*model.PlaceRecord) error {
	if err := s.ensureHeader(ctx); err != nil {
		return err
	}

	values := make([][]interface{}, len(records))
	for i, rec := range records {
		values[i] = rowFromRecord(rec)
	}
	resp, err := s.service.Spreadsheets.Values.
		Append(s.sheetID, s.sheetName, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", s.sheetName, err)
	}

	// Index the rows at the positions the API reports it wrote them. The
	// append anchors at the end of the sheet's used range, which can differ
	// from the indexed row count when List skipped malformed rows.
	if start, ok := appendStartRow(resp); ok {
		s.mu.Lock()
		for i, rec := range records {
			s.rowIndex[rec.NormalizedName()] = start + i
		}
		s.mu.Unlock()
	}
	return nil
}

// appendStartRow extracts the 1-based row of the first appended cell from
// the response's updated range (e.g. "Historial!A5:R7" yields 5).
func appendStartRow(resp *sheets.AppendValuesResponse) (int, bool) {
	if resp == nil || resp.Updates == nil {
		return 0, false
	}
	ref := resp.Updates.UpdatedRange
	if idx := strings.LastIndex(ref, "!"); idx >= 0 {
		ref = ref[idx+1:]
	}
	if idx := strings.Index(ref, ":"); idx >= 0 {
		ref = ref[:idx]
	}
	row, err := strconv.Atoi(strings.TrimLeft(ref, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	if err != nil || row < 1 {
		return 0, false
	}
	return row, true
}

// Update overwrites the row holding the same normalized place name. The row
// position comes from the index built by the last List, which the history
// service always performs first.
func (s *SheetStore) Update(ctx context.Context, record *model.PlaceRecord) error {
	s.mu.Lock()
	row, ok := s.rowIndex[record.NormalizedName()]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("no sheet row for place %q", record.PlaceName)
	}

	rangeRef := fmt.Sprintf("%s!A%d", s.sheetName, row)
	_, err := s.service.Spreadsheets.Values.
		Update(s.sheetID, rangeRef, &sheets.ValueRange{Values: [][]interface{}{rowFromRecord(record)}}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet row %d: %w", row, err)
	}
	return nil
}

// ensureHeader writes the header row into an empty sheet so later reads can
// key cells by column name.
func (s *SheetStore) ensureHeader(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.sheetID, s.sheetName+"!A1:A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("probe sheet %s: %w", s.sheetName, err)
	}
	if len(resp.Values) > 0 {
		return nil
	}
	_, err = s.service.Spreadsheets.Values.
		Update(s.sheetID, s.sheetName+"!A1", &sheets.ValueRange{Values: [][]interface{}{headerRow()}}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header to sheet %s: %w", s.sheetName, err)
	}
	return nil
}
