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

// Package model defines the data structures for the application. This file
// provides the hardcoded example object embedded in the extraction prompt.
// Giving the model one concrete, well-formed instance of the desired JSON
// (few-shot prompting) measurably improves how often the response parses
// without the normalizer having to repair it.
package model

// ExtractionExample is the prompt-facing subset of a PlaceRecord: the
// fields the model is asked to produce. Identity and enrichment fields are
// deliberately absent so the model never invents ids or photo links.
type ExtractionExample struct {
	Category          string  `json:"category"`
	PlaceName         string  `json:"placeName"`
	EstimatedLocation string  `json:"estimatedLocation"`
	PriceRange        string  `json:"priceRange"`
	Summary           string  `json:"summary"`
	Score             float64 `json:"score"`
	ConfidenceLevel   string  `json:"confidenceLevel"`
	CriticalVerdict   string  `json:"criticalVerdict"`
	IsTouristTrap     bool    `json:"isTouristTrap"`
}

// GetExtractionExample returns the sample place used for few-shot
// prompting in the extraction template.
func GetExtractionExample() *ExtractionExample {
	return &ExtractionExample{
		Category:          "Comida",
		PlaceName:         "Mercado de San Juan",
		EstimatedLocation: "Ciudad de México, México",
		PriceRange:        "150-300 MXN por persona",
		Summary:           "Puesto de mariscos dentro del mercado con fila de locales al mediodía.",
		Score:             4,
		ConfidenceLevel:   "Alto",
		CriticalVerdict:   "Precios visibles y clientela local; parece auténtico.",
		IsTouristTrap:     false,
	}
}
