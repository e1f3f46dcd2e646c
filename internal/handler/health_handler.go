package handler

import (
	"context"
	"net/http"
	"sort"

	"account-service/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(http.StatusOK, gin.H{"message": "pong"}, "pong"))
}

// Health runs every check and returns 503 when any of them fails.
func (h *HealthHandler) Health(c *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	report := make(map[string]string, len(names))
	var failed []string
	for _, name := range names {
		if err := h.checks[name](c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			report[name] = err.Error()
			failed = append(failed, name)
			continue
		}
		report[name] = "ok"
	}

	if status != http.StatusOK {
		c.JSON(status, httpdto.NewErrorResponse(status, "unhealthy", failed...))
		return
	}
	c.JSON(status, httpdto.NewSuccessResponse(status, report, "healthy"))
}
