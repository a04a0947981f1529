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

// Package test provides utility functions and mock data for the test
// suite: test-specific configuration loading and captured model output
// fixtures for the normalization tests.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/viajescout/viaje-scout/internal/cloud"
)

// StateManager caches the test configuration so it loads once per run.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is non-nil.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// GetTestExtractionText returns a captured Gemini response for a travel
// video, fenced the way the live model fences JSON. Used by normalizer and
// pipeline tests.
func GetTestExtractionText() string {
	return "```json\n" + `[
  {
    "category": "Comida/Otro",
    "placeName": "Mercado de San Juan",
    "estimatedLocation": "Ciudad de México, México",
    "priceRange": "$$",
    "summary": "Puesto de mariscos dentro del mercado, porciones generosas.",
    "score": "4,5",
    "confidenceLevel": "Alto",
    "criticalVerdict": "Vale la pena si evitas la hora pico",
    "isTouristTrap": false
  },
  {
    "category": "Lugar",
    "placeName": "Mirador Torre Latino",
    "estimatedLocation": "Centro Histórico, CDMX",
    "priceRange": null,
    "summary": "",
    "score": 0,
    "isTouristTrap": "si"
  }
]` + "\n```"
}

// GetTestMalformedExtractionText returns a model response with no JSON at
// all, for exercising the unparsable-payload path.
func GetTestMalformedExtractionText() string {
	return "Lo siento, no puedo identificar lugares en este video."
}

// SetupOS points the configuration loader at the test overlay
// (.env.test.toml).
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.config = config
	}
	return state.config
}
