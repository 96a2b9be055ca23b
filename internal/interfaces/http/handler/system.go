package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/exoorder/backend/internal/interfaces/http/dto"
)

// healthPingTimeout bounds the store check of a health request
const healthPingTimeout = 2 * time.Second

// StorePinger checks the preference store
type StorePinger interface {
	Ping(ctx context.Context) error
}

// FormCounter reports the number of open order forms
type FormCounter interface {
	ActiveForms() int
}

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	store     StorePinger
	forms     FormCounter
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, store StorePinger, forms FormCounter) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		store:     store,
		forms:     forms,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health answers 200 while the process runs; a failing store ping turns
// it into 503 so load balancers stop routing here
func (h *SystemHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{Status: "ok", Store: "ok"}
	if h.forms != nil {
		resp.ActiveForms = h.forms.ActiveForms()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		_ = c.Error(err)
		resp.Status = "degraded"
		resp.Store = "unavailable"
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    resp,
			Error: &dto.ErrorInfo{
				Code:      dto.ErrCodeUnavailable,
				Message:   "Preference store is unavailable",
				RequestID: getRequestID(c),
			},
		})
		return
	}
	h.Success(c, resp)
}

// GetSystemInfo returns the service name, version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
