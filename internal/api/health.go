// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/bookgod/internal/platform/respond"
)

// readinessTimeout bounds every dependency probe.
const readinessTimeout = 2 * time.Second

// Check probes one dependency.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type healthHandler struct {
	checks []Check
	logger *slog.Logger
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(checks []Check, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{checks: checks, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

// readiness handles GET /ready. Probes run concurrently under one deadline.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), readinessTimeout)
	defer cancel()

	results := make([]checkResult, len(handler.checks))

	var group errgroup.Group
	for index, check := range handler.checks {
		group.Go(func() error {
			result := checkResult{Name: check.Name, IsOK: true}
			if err := check.Probe(ctx); err != nil {
				result.IsOK = false
				result.Error = err.Error()
				handler.logger.Error("readiness_check_failed", slog.String("dependency", check.Name), slog.Any("error", err))
			}
			results[index] = result
			return nil
		})
	}
	_ = group.Wait()

	responseStatus, httpStatus := "ready", http.StatusOK
	for _, result := range results {
		if !result.IsOK {
			responseStatus, httpStatus = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: map[string]any{
		"status": responseStatus,
		"checks": results,
	}})
}
