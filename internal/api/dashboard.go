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

// Package api holds secondary HTTP surfaces that are not part of the core
// analysis flow, currently the history statistics endpoint used by the
// frontend dashboard.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/viajescout/viaje-scout/internal/core/services"
)

// Stats summarizes the saved place history.
type Stats struct {
	TotalPlaces  int            `json:"totalPlaces"`
	ByCategory   map[string]int `json:"byCategory"`
	TouristTraps int            `json:"touristTraps"`
	AverageScore float64        `json:"averageScore"`
	WithPhoto    int            `json:"withPhoto"`
	WithCoords   int            `json:"withCoords"`
}

// CollectStats computes history statistics from the current store contents.
func CollectStats(history *services.HistoryService) *Stats {
	out := &Stats{ByCategory: make(map[string]int)}

	records, err := history.List(context.Background())
	if err != nil {
		return out
	}

	var scoreSum float64
	for _, rec := range records {
		out.TotalPlaces++
		out.ByCategory[rec.Category]++
		scoreSum += rec.Score
		if rec.IsTouristTrap {
			out.TouristTraps++
		}
		if rec.PhotoUrl != "" {
			out.WithPhoto++
		}
		if rec.HasCoordinates() {
			out.WithCoords++
		}
	}
	if out.TotalPlaces > 0 {
		out.AverageScore = scoreSum / float64(out.TotalPlaces)
	}
	return out
}

// StatsRouter registers GET /stats, returning a fresh summary per request.
func StatsRouter(r *gin.RouterGroup, collect func() *Stats) {
	stats := r.Group("/stats")
	{
		stats.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, collect())
		})
	}
}
