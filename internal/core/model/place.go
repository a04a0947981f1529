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

// Package model defines the core data structures for the application.
// This file defines the PlaceRecord, the canonical representation of one
// place, dish, or activity identified in a travel video. A PlaceRecord is
// created exclusively by the normalizer (see normalize.go) so that every
// record flowing through enrichment and persistence has a full set of
// fields with known types, no matter how malformed the model output was.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel values substituted for missing or uninformative model output.
// Downstream code and the spreadsheet rows rely on these exact strings.
const (
	UnknownPlaceName = "Unknown"
	UnknownPrice     = "N/A"

	// DefaultScore replaces a zero, null, or absent score. A persisted
	// score of 0 would poison the running average in the history store,
	// so the normalizer never lets one through.
	DefaultScore = 4.0

	MinScore = 1.0
	MaxScore = 5.0
)

// Categories is the closed set of content categories the extraction prompt
// asks for. The model occasionally invents composites ("Comida/Otro") or
// translations; NormalizeCategory reduces those to a single member.
var Categories = []string{
	"Lugar",
	"Comida",
	"Actividad",
	"Consejo",
	"Alojamiento",
	"Compras",
	"Otro",
}

// categoryAliases maps frequent model spellings (English, lowercase,
// synonyms seen across historical responses) onto the canonical set.
var categoryAliases = map[string]string{
	"lugar":       "Lugar",
	"place":       "Lugar",
	"sitio":       "Lugar",
	"comida":      "Comida",
	"food":        "Comida",
	"restaurante": "Comida",
	"gastronomia": "Comida",
	"gastronomía": "Comida",
	"actividad":   "Actividad",
	"activity":    "Actividad",
	"adventure":   "Actividad",
	"aventura":    "Actividad",
	"consejo":     "Consejo",
	"tip":         "Consejo",
	"alojamiento": "Alojamiento",
	"lodging":     "Alojamiento",
	"hotel":       "Alojamiento",
	"compras":     "Compras",
	"shopping":    "Compras",
	"otro":        "Otro",
	"other":       "Otro",
}

// RegisterCategoryAliases adds configured alias spellings (lowercased) for
// a canonical category. Called at startup from the categories config map;
// built-in aliases are never overridden.
func RegisterCategoryAliases(canonical string, aliases []string) {
	for _, alias := range aliases {
		key := strings.ToLower(strings.TrimSpace(alias))
		if key == "" {
			continue
		}
		if _, exists := categoryAliases[key]; !exists {
			categoryAliases[key] = canonical
		}
	}
}

// PlaceRecord is the stable unit that flows through enrichment, the HTTP
// responses, and the history store. JSON field names match the frontend
// contract inherited from the original service.
type PlaceRecord struct {
	Id                string  `json:"id"`                // Fresh UUID, generated per normalization, never reused.
	Timestamp         int64   `json:"timestamp"`         // Creation instant, milliseconds since epoch.
	Category          string  `json:"category"`          // Exactly one member of Categories (or a documented pass-through).
	PlaceName         string  `json:"placeName"`         // Display name; UnknownPlaceName when the model gave none.
	EstimatedLocation string  `json:"estimatedLocation"` // Free-text "City, Country" hint from the model.
	Address           string  `json:"address"`           // Geocoder-resolved formatted address; empty until enriched.
	Lat               float64 `json:"lat"`               // 0 means unresolved, never the equator.
	Lng               float64 `json:"lng"`               // 0 means unresolved, never the meridian.
	PriceRange        string  `json:"priceRange"`        // Free text; UnknownPrice when absent.
	Summary           string  `json:"summary"`           // Narrative, optionally prefixed with the critical verdict.
	Score             float64 `json:"score"`             // 1.0 to 5.0, never 0 (see DefaultScore).
	ConfidenceLevel   string  `json:"confidenceLevel"`   // Alto, Medio, or Bajo.
	IsTouristTrap     bool    `json:"isTouristTrap"`
	PhotoUrl          string  `json:"photoUrl"` // Best-effort illustrative image; empty string on lookup failure.
	MapsLink          string  `json:"mapsLink"` // Always non-empty after enrichment (coords link or text-search fallback).
	Website           string  `json:"website"`
	SourceUrl         string  `json:"sourceUrl"`   // The video URL the record was extracted from.
	ReviewCount       int     `json:"reviewCount"` // Observation counter used by the merge store's running average.
}

// NewPlaceRecord creates a record with a fresh identity and every sentinel
// default in place. The normalizer overwrites fields it can coerce from the
// raw item; anything it cannot keeps these values, which guarantees the
// totality property the rest of the system depends on.
func NewPlaceRecord() *PlaceRecord {
	return &PlaceRecord{
		Id:              uuid.NewString(),
		Timestamp:       time.Now().UnixMilli(),
		Category:        "Otro",
		PlaceName:       UnknownPlaceName,
		PriceRange:      UnknownPrice,
		Score:           DefaultScore,
		ConfidenceLevel: "Medio",
		ReviewCount:     1,
	}
}

// HasCoordinates reports whether the record carries a usable coordinate
// pair. A 0 in either axis is treated as "unresolved" by contract.
func (p *PlaceRecord) HasCoordinates() bool {
	return p.Lat != 0 && p.Lng != 0
}

// NormalizedName returns the deduplication key used by the history store.
func (p *PlaceRecord) NormalizedName() string {
	return NormalizeName(p.PlaceName)
}
