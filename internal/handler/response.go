package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "paylinks/internal/errors"
	"paylinks/internal/model"
)

// LinkResponse is the wire form of a stored payment link.
type LinkResponse struct {
	ID                   string      `json:"id"`
	User                 string      `json:"user"`
	Amount               json.Number `json:"amount" swaggertype:"number"`
	Description          string      `json:"description,omitempty"`
	Status               string      `json:"status"`
	PaymentProvider      string      `json:"payment_provider"`
	ProviderPreferenceID string      `json:"provider_preference_id"`
	PaymentURL           string      `json:"payment_url"`
	ProviderPaymentID    *string     `json:"provider_payment_id,omitempty"`
	CreatedAt            string      `json:"created_at"`
	UpdatedAt            *string     `json:"updated_at,omitempty"`
}

// NewLinkResponse maps a record to its wire form. The amount keeps its exact digits.
func NewLinkResponse(link *model.PaymentLink) LinkResponse {
	resp := LinkResponse{
		ID:                   link.ID,
		User:                 link.User,
		Amount:               json.Number(link.Amount.String()),
		Description:          link.Description,
		Status:               link.Status,
		PaymentProvider:      link.PaymentProvider,
		ProviderPreferenceID: link.ProviderPreferenceID,
		PaymentURL:           link.PaymentURL,
		ProviderPaymentID:    link.ProviderPaymentID,
		CreatedAt:            model.FormatTimestamp(link.CreatedAt),
	}
	if link.UpdatedAt != nil {
		updated := model.FormatTimestamp(*link.UpdatedAt)
		resp.UpdatedAt = &updated
	}
	return resp
}

// NotFoundResponse is returned by GET /links/{id} for unknown ids.
type NotFoundResponse struct {
	Error string `json:"error" example:"not_found"`
	ID    string `json:"id"`
}

func errorResponse(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func invalidRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: message,
		Code:  "INVALID_REQUEST",
	})
}

// validationError turns validator output into the error envelope with
// per-field details keyed by json name.
func validationError(err error) error {
	details := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			name := strings.ToLower(fe.Field())
			details[name] = name + " is " + fe.Tag()
		}
	}
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error:   "invalid request",
		Code:    "VALIDATION_ERROR",
		Details: details,
	})
}

func fieldError(field, message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error:   message,
		Code:    "VALIDATION_ERROR",
		Details: map[string]string{field: message},
	})
}
