package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/academy/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// SystemHandler serves liveness and readiness probes
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	checks    map[string]ReadinessCheck
}

// NewSystemHandler creates a new SystemHandler. checks are run by Ready.
func NewSystemHandler(name, version string, checks map[string]ReadinessCheck) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		checks:    checks,
	}
}

// HealthResponse represents the liveness response
type HealthResponse struct {
	Status    string `json:"status"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// ReadyResponse lists the outcome of each dependency check
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health godoc
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, HealthResponse{
		Status:    "ok",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready godoc
// @Summary      Readiness probe
// @Description  Runs every dependency check; 503 when any fails
// @Tags         system
// @Produce      json
// @Router       /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			continue
		}
		resp.Checks[name] = "ok"
	}

	if resp.Status != "ready" {
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}
	h.Success(c, resp)
}
