package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports static runtime facts.
type HealthHandler struct {
	storeMode           string
	processorConfigured bool
	credentialsPresent  bool
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(storeMode string, processorConfigured, credentialsPresent bool) *HealthHandler {
	return &HealthHandler{
		storeMode:           storeMode,
		processorConfigured: processorConfigured,
		credentialsPresent:  credentialsPresent,
	}
}

// HealthResponse represents the health payload.
type HealthResponse struct {
	OK                  bool   `json:"ok"`
	StoreMode           string `json:"storeMode" example:"local"`
	ProcessorConfigured bool   `json:"processorConfigured"`
	CredentialsPresent  bool   `json:"credentialsPresent"`
}

// Health godoc
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		OK:                  true,
		StoreMode:           h.storeMode,
		ProcessorConfigured: h.processorConfigured,
		CredentialsPresent:  h.credentialsPresent,
	})
}
