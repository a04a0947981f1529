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
	goctx "context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/viajescout/viaje-scout/internal/core/cor"
	"github.com/viajescout/viaje-scout/internal/core/model"
	"github.com/viajescout/viaje-scout/internal/core/services"
)

// PlaceEnricher decorates normalized records with coordinates, a photo, and
// a maps link. Records are fanned out to a bounded worker pool; each worker
// writes its result back into the slot matching the record's input position,
// so the output order always matches the input order.
//
// Geocoding and photo lookup are independent: a failure in one never blocks
// the other, and either failure leaves the record usable.
type PlaceEnricher struct {
	cor.BaseCommand
	geocoder        services.Geocoder
	photoFinder     services.PhotoFinder
	numberOfWorkers int
}

func NewPlaceEnricher(
	name string,
	geocoder services.Geocoder,
	photoFinder services.PhotoFinder,
	numberOfWorkers int) *PlaceEnricher {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	return &PlaceEnricher{
		BaseCommand:     *cor.NewBaseCommand(name),
		geocoder:        geocoder,
		photoFinder:     photoFinder,
		numberOfWorkers: numberOfWorkers,
	}
}

// enrichJob carries one record and its position in the batch.
type enrichJob struct {
	index  int
	record *model.PlaceRecord
}

func (c *PlaceEnricher) Execute(context cor.Context) {
	records := context.Get(c.GetInputParam()).([]*model.PlaceRecord)
	if len(records) == 0 {
		c.GetSuccessCounter().Add(context.GetContext(), 1)
		context.Add(c.GetOutputParam(), records)
		return
	}

	var wg sync.WaitGroup
	jobs := make(chan *enrichJob, len(records))
	out := make([]*model.PlaceRecord, len(records))

	for w := 0; w < c.numberOfWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				c.enrichRecord(context.GetContext(), j.record)
				out[j.index] = j.record
			}
		}()
	}

	for i, rec := range records {
		jobs <- &enrichJob{index: i, record: rec}
	}
	close(jobs)
	wg.Wait()

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), out)
}

// enrichRecord resolves one record in place. AI-provided coordinates are
// trusted; otherwise the geocoder is asked for "{name} {location}". The
// maps link always ends up non-empty: a coordinate link when coordinates
// resolved, a text-search link otherwise.
func (c *PlaceEnricher) enrichRecord(ctx goctx.Context, rec *model.PlaceRecord) {
	query := strings.TrimSpace(rec.PlaceName + " " + rec.EstimatedLocation)

	if !rec.HasCoordinates() && c.geocoder != nil && rec.PlaceName != model.UnknownPlaceName {
		if result, err := c.geocoder.Geocode(ctx, query); err == nil {
			rec.Lat = result.Lat
			rec.Lng = result.Lng
			if rec.Address == "" {
				rec.Address = result.FormattedAddress
			}
		}
	}

	if rec.PhotoUrl == "" && c.photoFinder != nil && rec.PlaceName != model.UnknownPlaceName {
		if link, err := c.photoFinder.FindPhoto(ctx, query); err == nil {
			rec.PhotoUrl = link
		}
	}

	if rec.MapsLink == "" {
		rec.MapsLink = mapsLink(rec, query)
	}
}

func mapsLink(rec *model.PlaceRecord, query string) string {
	if rec.HasCoordinates() {
		return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f,%f", rec.Lat, rec.Lng)
	}
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(query)
}
