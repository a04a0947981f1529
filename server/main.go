// Copyright 2025 Viaje Scout Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main is the entry point for the place scout backend server.
//
// The server accepts short-form travel video URLs, runs them through the
// analysis pipeline (download, Gemini extraction, normalization, geo/photo
// enrichment), and maintains a deduplicated history of scouted places in a
// Google Sheet with an in-memory fallback. A chat endpoint answers
// questions about the saved places. The server is instrumented with
// OpenTelemetry and serves the bundled frontend for every non-API route.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/viajescout/viaje-scout/internal/api"
	"github.com/viajescout/viaje-scout/internal/cloud"
	"github.com/viajescout/viaje-scout/internal/core/cor"
	"github.com/viajescout/viaje-scout/internal/core/model"
	"github.com/viajescout/viaje-scout/internal/core/workflow"
	"github.com/viajescout/viaje-scout/internal/telemetry"
)

const frontendDir = "./web/dist"

func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()
	r.Use(otelgin.Middleware("viaje-scout-server"))
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.POST("/analyze", handleAnalyze)

	apiGroup := r.Group("/api")
	{
		HistoryRouter(apiGroup)
		ChatRouter(apiGroup)
		api.StatsRouter(apiGroup, func() *api.Stats {
			return api.CollectStats(state.historyService)
		})
	}

	ServeFrontend(r)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", listenPort(config)),
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 10 * time.Minute, // analysis requests wait on downloads and Gemini
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen", "error", err)
		}
	}()
	slog.Info("Server Ready", "addr", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}

// listenPort resolves the HTTP port: PORT env var first, then config, then
// 8080.
func listenPort(config *cloud.Config) int {
	if p := os.Getenv("PORT"); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			return port
		}
	}
	if config.Application.Port > 0 {
		return config.Application.Port
	}
	return 8080
}

// analyzeRequest is the POST /analyze body. Some frontends send the object
// wrapped in a single-element array, so the handler accepts both shapes.
type analyzeRequest struct {
	URL string `json:"url"`
}

// handleAnalyze runs the full analysis pipeline for one video URL and
// returns the enriched place records. Nothing is persisted here; the
// frontend saves the records it wants via POST /api/history.
func handleAnalyze(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
		return
	}
	var req analyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		var wrapped []analyzeRequest
		if err := json.Unmarshal(body, &wrapped); err != nil || len(wrapped) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"url\": ...} or a single-element array"})
			return
		}
		req = wrapped[0]
	}
	if strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	execCtx := cor.NewBaseContext()
	execCtx.SetContext(c.Request.Context())
	execCtx.Add(cor.CtxIn, req.URL)
	defer execCtx.Close()

	state.analysisPipeline.Execute(execCtx)

	if execCtx.HasErrors() {
		status, message := analysisErrorStatus(execCtx.GetErrors())
		slog.Error("analysis failed", "url", req.URL, "status", status, "error", message)
		c.JSON(status, gin.H{"error": message})
		return
	}

	records, ok := execCtx.Get(cor.CtxOut).([]*model.PlaceRecord)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis produced no result"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// analysisErrorStatus maps pipeline failures to HTTP statuses: quota
// rejections to 429, an extraction with no readable places to 422, and
// everything else (download, upload, infrastructure) to 500.
func analysisErrorStatus(errs map[string]error) (int, string) {
	for _, err := range errs {
		if cloud.IsRateLimited(err) {
			return http.StatusTooManyRequests, "the analysis model is rate limited, try again shortly"
		}
	}
	if err, ok := errs[workflow.CmdPlaceNormalize]; ok {
		return http.StatusUnprocessableEntity, err.Error()
	}
	for name, err := range errs {
		return http.StatusInternalServerError, fmt.Sprintf("%s: %s", name, err.Error())
	}
	return http.StatusInternalServerError, "analysis failed"
}

// HistoryRouter registers the place history endpoints.
func HistoryRouter(r *gin.RouterGroup) {
	history := r.Group("/history")
	{
		history.GET("", func(c *gin.Context) {
			records, err := state.historyService.List(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, records)
		})

		// Accepts one record or an array of records; both merge into the
		// history by place name.
		history.POST("", func(c *gin.Context) {
			body, err := c.GetRawData()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
				return
			}
			var records []*model.PlaceRecord
			if err := json.Unmarshal(body, &records); err != nil {
				var single model.PlaceRecord
				if err := json.Unmarshal(body, &single); err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a place record or an array of records"})
					return
				}
				records = []*model.PlaceRecord{&single}
			}

			status, err := state.historyService.Upsert(c.Request.Context(), records)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": status})
		})
	}
}

// chatRequest is the POST /api/chat body. The documented field is
// "message"; "question" is accepted as a legacy alias.
type chatRequest struct {
	Message  string `json:"message"`
	Question string `json:"question"`
}

func (r chatRequest) text() string {
	if msg := strings.TrimSpace(r.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(r.Question)
}

// ChatRouter registers the history chat endpoint.
func ChatRouter(r *gin.RouterGroup) {
	r.POST("/chat", func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.text() == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}
		answer, err := state.chatService.Answer(c.Request.Context(), req.text())
		if err != nil {
			if cloud.IsRateLimited(err) {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "the chat model is rate limited, try again shortly"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"answer": answer})
	})
}

// ServeFrontend serves the bundled single-page frontend. Unknown non-API
// paths fall back to index.html so client-side routing works on reload.
func ServeFrontend(r *gin.Engine) {
	r.Static("/assets", filepath.Join(frontendDir, "assets"))
	r.StaticFile("/", filepath.Join(frontendDir, "index.html"))
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.File(filepath.Join(frontendDir, "index.html"))
	})
}
