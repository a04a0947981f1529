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

// Package services holds the domain services the workflow commands and HTTP
// handlers depend on: geocoding, photo lookup, the place history, and the
// travel chat assistant. Commands depend on the small interfaces defined
// here so tests can substitute fakes.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"googlemaps.github.io/maps"
)

// GeocodeResult is the subset of a geocoding response the enrichment stage
// cares about.
type GeocodeResult struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
}

// Geocoder resolves a free-text place query to coordinates and a formatted
// address.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*GeocodeResult, error)
}

// MapsGeocoder is the Google Maps Geocoding API implementation. Calls are
// spaced out by a minimum delay shared across all callers, so a burst of
// concurrent enrichment workers does not trip the API's QPS limit.
type MapsGeocoder struct {
	client  *maps.Client
	timeout time.Duration
	delay   time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

func NewMapsGeocoder(client *maps.Client, timeout time.Duration, delay time.Duration) *MapsGeocoder {
	return &MapsGeocoder{
		client:  client,
		timeout: timeout,
		delay:   delay,
	}
}

// enforceDelay blocks until at least the configured delay has elapsed since
// the previous geocoding call.
func (g *MapsGeocoder) enforceDelay() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if since := time.Since(g.lastCall); since < g.delay {
		time.Sleep(g.delay - since)
	}
	g.lastCall = time.Now()
}

// Geocode resolves the query via the Geocoding API, returning the first
// candidate. A query with no matches is an error so the caller can leave
// the record's coordinates unset.
func (g *MapsGeocoder) Geocode(ctx context.Context, query string) (*GeocodeResult, error) {
	g.enforceDelay()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: query})
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("geocode %q: no results", query)
	}
	return &GeocodeResult{
		Lat:              resp[0].Geometry.Location.Lat,
		Lng:              resp[0].Geometry.Location.Lng,
		FormattedAddress: resp[0].FormattedAddress,
	}, nil
}
