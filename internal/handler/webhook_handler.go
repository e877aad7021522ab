package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"paylinks/internal/auth"
	"paylinks/internal/service"
)

// WebhookHandler receives payment processor notifications.
type WebhookHandler struct {
	webhookService service.WebhookService
	requireToken   bool
}

// NewWebhookHandler creates a webhook handler. When requireToken is set the
// simulation shape is honoured only with a valid simulation bearer token.
func NewWebhookHandler(webhookService service.WebhookService, requireToken bool) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService, requireToken: requireToken}
}

// WebhookRequest accepts both the simulation shape {external_reference, status}
// and the processor shape {type, data: {id}}.
type WebhookRequest struct {
	ExternalReference *string          `json:"external_reference,omitempty"`
	Status            *string          `json:"status,omitempty"`
	Type              string           `json:"type,omitempty" example:"payment"`
	Data              *WebhookDataJSON `json:"data,omitempty"`
}

// WebhookDataJSON carries the processor payment id, sent as a string or a number.
type WebhookDataJSON struct {
	ID json.RawMessage `json:"id" swaggertype:"string" example:"1234567890"`
}

// WebhookResponse describes the reconciled link.
type WebhookResponse struct {
	OK        bool   `json:"ok"`
	ID        string `json:"id"`
	Status    string `json:"status"`
	PaymentID string `json:"payment_id,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

// HandleNotification godoc
// @Summary Receive a payment notification
// @Description Processor events are looked up at the processor before the link is updated.
// @Description The direct simulation shape is accepted only when enabled.
// @Tags webhook
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body WebhookRequest true "Notification"
// @Param data.id query string false "Payment id for IPN-style callbacks"
// @Success 200 {object} WebhookResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /webhook/processor [post]
func (h *WebhookHandler) HandleNotification(c echo.Context) error {
	var req WebhookRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest("invalid notification body")
	}

	dataID, err := h.dataID(c, req)
	if err != nil {
		return invalidRequest("invalid data.id")
	}

	res, err := h.webhookService.Handle(c.Request().Context(), service.Notification{
		ExternalReference:    req.ExternalReference,
		Status:               req.Status,
		Type:                 req.Type,
		DataID:               dataID,
		SimulationAuthorized: h.simulationAuthorized(c),
	})
	if err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusOK, WebhookResponse{
		OK:        true,
		ID:        res.ID,
		Status:    res.Status,
		PaymentID: res.PaymentID,
		Mode:      res.Mode,
	})
}

// dataID reads data.id from the body, falling back to the data.id and id
// query parameters used by IPN callbacks.
func (h *WebhookHandler) dataID(c echo.Context, req WebhookRequest) (string, error) {
	if req.Data != nil && len(req.Data.ID) > 0 {
		dec := json.NewDecoder(bytes.NewReader(req.Data.ID))
		dec.UseNumber()
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return "", err
		}
		if n, ok := raw.(json.Number); ok && isZeroNumber(n) {
			raw = nil
		}
		if raw != nil {
			id, err := cast.ToStringE(raw)
			if err != nil {
				return "", err
			}
			if id != "" {
				return id, nil
			}
		}
	}
	if id := c.QueryParam("data.id"); id != "" {
		return id, nil
	}
	return c.QueryParam("id"), nil
}

// isZeroNumber reports a numeric id of 0, which notifications use as a placeholder.
func isZeroNumber(n json.Number) bool {
	f, err := n.Float64()
	return err == nil && f == 0
}

func (h *WebhookHandler) simulationAuthorized(c echo.Context) bool {
	if !h.requireToken {
		return true
	}
	token, _ := c.Get("user").(*jwt.Token)
	return auth.AllowsSimulation(token)
}
