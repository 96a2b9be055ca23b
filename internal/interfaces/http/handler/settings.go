package handler

import (
	"github.com/gin-gonic/gin"

	prefapp "github.com/exoorder/backend/internal/application/preference"
	"github.com/exoorder/backend/internal/interfaces/http/dto"
)

// SettingsHandler manages the remote API key
type SettingsHandler struct {
	BaseHandler
	preferences *prefapp.Service
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(preferences *prefapp.Service) *SettingsHandler {
	return &SettingsHandler{
		preferences: preferences,
	}
}

// GetAPIKey reports whether a key is set; the key itself is masked
func (h *SettingsHandler) GetAPIKey(c *gin.Context) {
	h.Success(c, h.status())
}

// SetAPIKey saves the key. An empty key clears it.
func (h *SettingsHandler) SetAPIKey(c *gin.Context) {
	var req dto.SetAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	if req.APIKey != h.preferences.APIKey() {
		if err := h.preferences.SetAPIKey(c.Request.Context(), req.APIKey); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	h.Success(c, h.status())
}

func (h *SettingsHandler) status() dto.APIKeyStatus {
	key := h.preferences.APIKey()
	return dto.APIKeyStatus{
		Configured: key != "",
		Masked:     prefapp.MaskAPIKey(key),
	}
}
