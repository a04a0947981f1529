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

package commands_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viajescout/viaje-scout/internal/core/commands"
	"github.com/viajescout/viaje-scout/internal/core/cor"
	"github.com/viajescout/viaje-scout/internal/core/model"
	"github.com/viajescout/viaje-scout/internal/core/services"
)

// fakeGeocoder resolves everything to a fixed point and records which
// queries it saw.
type fakeGeocoder struct {
	mu      sync.Mutex
	queries []string
	fail    bool
}

func (f *fakeGeocoder) Geocode(_ context.Context, query string) (*services.GeocodeResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.fail {
		return nil, fmt.Errorf("no results for %q", query)
	}
	return &services.GeocodeResult{
		Lat:              19.4326,
		Lng:              -99.1332,
		FormattedAddress: "Centro Histórico, CDMX",
	}, nil
}

type fakePhotoFinder struct {
	fail bool
}

func (f *fakePhotoFinder) FindPhoto(_ context.Context, query string) (string, error) {
	if f.fail {
		return "", fmt.Errorf("no image for %q", query)
	}
	return "https://img.example/" + query + ".jpg", nil
}

func runEnricher(t *testing.T, enricher *commands.PlaceEnricher, records []*model.PlaceRecord) []*model.PlaceRecord {
	t.Helper()
	execCtx := cor.NewBaseContext()
	defer execCtx.Close()
	execCtx.Add(enricher.GetInputParam(), records)

	require.True(t, enricher.IsExecutable(execCtx))
	enricher.Execute(execCtx)
	require.Empty(t, execCtx.GetErrors())

	out, ok := execCtx.Get(enricher.GetOutputParam()).([]*model.PlaceRecord)
	require.True(t, ok, "enricher must emit the record slice")
	return out
}

func enrichable(name string) *model.PlaceRecord {
	rec := model.NewPlaceRecord()
	rec.PlaceName = name
	rec.EstimatedLocation = "CDMX"
	return rec
}

// TestEnricherResolvesCoordinatesAndPhoto verifies a record without
// coordinates picks up the geocoder result, the photo link, the formatted
// address, and a coordinate maps link.
func TestEnricherResolvesCoordinatesAndPhoto(t *testing.T) {
	enricher := commands.NewPlaceEnricher("enrich-places", &fakeGeocoder{}, &fakePhotoFinder{}, 2)

	out := runEnricher(t, enricher, []*model.PlaceRecord{enrichable("Mercado de San Juan")})
	require.Len(t, out, 1)

	rec := out[0]
	assert.InDelta(t, 19.4326, rec.Lat, 0.0001)
	assert.InDelta(t, -99.1332, rec.Lng, 0.0001)
	assert.Equal(t, "Centro Histórico, CDMX", rec.Address)
	assert.Equal(t, "https://img.example/Mercado de San Juan CDMX.jpg", rec.PhotoUrl)
	assert.Contains(t, rec.MapsLink, "query=19.43")
}

// TestEnricherPreservesInputOrder verifies the worker pool writes results
// back into their original batch positions.
func TestEnricherPreservesInputOrder(t *testing.T) {
	enricher := commands.NewPlaceEnricher("enrich-places", &fakeGeocoder{}, &fakePhotoFinder{}, 4)

	records := make([]*model.PlaceRecord, 10)
	for i := range records {
		records[i] = enrichable(fmt.Sprintf("Lugar %02d", i))
	}

	out := runEnricher(t, enricher, records)
	require.Len(t, out, 10)
	for i, rec := range out {
		assert.Equal(t, fmt.Sprintf("Lugar %02d", i), rec.PlaceName)
	}
}

// TestEnricherTrustsExistingCoordinates verifies AI-provided coordinates
// skip the geocoder entirely.
func TestEnricherTrustsExistingCoordinates(t *testing.T) {
	geocoder := &fakeGeocoder{}
	enricher := commands.NewPlaceEnricher("enrich-places", geocoder, &fakePhotoFinder{}, 1)

	rec := enrichable("Bellas Artes")
	rec.Lat = 19.4352
	rec.Lng = -99.1412

	out := runEnricher(t, enricher, []*model.PlaceRecord{rec})
	require.Len(t, out, 1)
	assert.Empty(t, geocoder.queries, "known coordinates must not trigger a geocode call")
	assert.InDelta(t, 19.4352, out[0].Lat, 0.0001)
}

// TestEnricherGeocodeFailureDegrades verifies a failed geocode leaves the
// record usable: zero coordinates, a text-search maps link, and the photo
// still resolved.
func TestEnricherGeocodeFailureDegrades(t *testing.T) {
	enricher := commands.NewPlaceEnricher("enrich-places", &fakeGeocoder{fail: true}, &fakePhotoFinder{}, 1)

	out := runEnricher(t, enricher, []*model.PlaceRecord{enrichable("Mirador Secreto")})
	require.Len(t, out, 1)

	rec := out[0]
	assert.False(t, rec.HasCoordinates())
	assert.Contains(t, rec.MapsLink, "query=Mirador+Secreto+CDMX")
	assert.NotEmpty(t, rec.PhotoUrl, "photo lookup is independent of geocoding")
}

// TestEnricherSkipsUnknownPlace verifies the unknown-name sentinel never
// reaches the lookup services but still gets a maps link.
func TestEnricherSkipsUnknownPlace(t *testing.T) {
	geocoder := &fakeGeocoder{}
	enricher := commands.NewPlaceEnricher("enrich-places", geocoder, &fakePhotoFinder{}, 1)

	rec := model.NewPlaceRecord()
	out := runEnricher(t, enricher, []*model.PlaceRecord{rec})
	require.Len(t, out, 1)
	assert.Empty(t, geocoder.queries)
	assert.Empty(t, out[0].PhotoUrl)
	assert.NotEmpty(t, out[0].MapsLink)
}

// TestEnricherWithoutServices verifies the enricher runs when neither
// lookup service is configured: records pass through with text-search maps
// links only.
func TestEnricherWithoutServices(t *testing.T) {
	enricher := commands.NewPlaceEnricher("enrich-places", nil, nil, 2)

	out := runEnricher(t, enricher, []*model.PlaceRecord{enrichable("Tepoztlán")})
	require.Len(t, out, 1)
	assert.False(t, out[0].HasCoordinates())
	assert.Contains(t, out[0].MapsLink, "query=Tepozt")
}

// hungGeocoder never answers: it blocks until the call's context is done,
// standing in for a lookup service that has stopped responding.
type hungGeocoder struct{}

func (hungGeocoder) Geocode(ctx context.Context, _ string) (*services.GeocodeResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// TestEnricherHungLookupDoesNotBlockBatch verifies a lookup that only
// returns when its context expires cannot stall the batch: with a
// deadline-bound context the batch still completes, the stalled records
// stay unenriched, and the independent photo lookup still ran.
func TestEnricherHungLookupDoesNotBlockBatch(t *testing.T) {
	enricher := commands.NewPlaceEnricher("enrich-places", hungGeocoder{}, &fakePhotoFinder{}, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	execCtx := cor.NewBaseContext()
	defer execCtx.Close()
	execCtx.SetContext(ctx)
	execCtx.Add(enricher.GetInputParam(), []*model.PlaceRecord{
		enrichable("Cascada Escondida"),
		enrichable("Cenote Azul"),
	})

	done := make(chan struct{})
	go func() {
		enricher.Execute(execCtx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("enricher did not finish after the lookup context expired")
	}

	require.Empty(t, execCtx.GetErrors())
	out, ok := execCtx.Get(enricher.GetOutputParam()).([]*model.PlaceRecord)
	require.True(t, ok)
	require.Len(t, out, 2)
	for _, rec := range out {
		assert.False(t, rec.HasCoordinates())
		assert.Contains(t, rec.MapsLink, "query=C")
		assert.NotEmpty(t, rec.PhotoUrl, "photo lookup is independent of the stalled geocoder")
	}
}

// TestEnricherEmptyBatch verifies an empty batch flows through untouched.
func TestEnricherEmptyBatch(t *testing.T) {
	enricher := commands.NewPlaceEnricher("enrich-places", &fakeGeocoder{}, &fakePhotoFinder{}, 2)
	out := runEnricher(t, enricher, []*model.PlaceRecord{})
	assert.Empty(t, out)
}
