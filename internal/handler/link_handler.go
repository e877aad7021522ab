package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"paylinks/internal/service"
)

// LinkHandler handles payment link endpoints.
type LinkHandler struct {
	linkService service.LinkService
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(linkService service.LinkService) *LinkHandler {
	return &LinkHandler{linkService: linkService}
}

// CreateLinkRequest represents a payment link creation request.
type CreateLinkRequest struct {
	User        string      `json:"user" validate:"required" example:"customer-42"`
	Amount      json.Number `json:"amount" validate:"required" swaggertype:"number" example:"150.50"`
	Description *string     `json:"description,omitempty" example:"Payment Link"`
}

// CreateLinkResponse represents a created payment link.
type CreateLinkResponse struct {
	ID                   string `json:"id"`
	Status               string `json:"status" example:"CREATED"`
	PaymentURL           string `json:"payment_url"`
	ProviderPreferenceID string `json:"provider_preference_id"`
}

// ListLinksResponse wraps a page of links. Item order is unspecified.
type ListLinksResponse struct {
	Items []LinkResponse `json:"items"`
}

// CreateLink godoc
// @Summary Create a payment link
// @Description Registers a checkout preference with the payment processor and stores the link.
// @Tags links
// @Accept json
// @Produce json
// @Param request body CreateLinkRequest true "Link data"
// @Success 201 {object} CreateLinkResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /links [post]
func (h *LinkHandler) CreateLink(c echo.Context) error {
	var req CreateLinkRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest("invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		return fieldError("amount", "amount must be a number")
	}

	res, err := h.linkService.CreateLink(c.Request().Context(), service.CreateLinkInput{
		User:        req.User,
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusCreated, CreateLinkResponse{
		ID:                   res.ID,
		Status:               res.Status,
		PaymentURL:           res.PaymentURL,
		ProviderPreferenceID: res.ProviderPreferenceID,
	})
}

// GetLink godoc
// @Summary Get a payment link
// @Tags links
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} LinkResponse
// @Failure 404 {object} NotFoundResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /links/{id} [get]
func (h *LinkHandler) GetLink(c echo.Context) error {
	id := c.Param("id")

	link, found, err := h.linkService.GetLink(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	if !found {
		return c.JSON(http.StatusNotFound, NotFoundResponse{Error: "not_found", ID: id})
	}

	return c.JSON(http.StatusOK, NewLinkResponse(link))
}

// ListLinks godoc
// @Summary List payment links
// @Description Returns up to limit links in store order, which is unspecified.
// @Tags links
// @Produce json
// @Param limit query int false "Maximum number of links (1-100, default 20)"
// @Success 200 {object} ListLinksResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /links [get]
func (h *LinkHandler) ListLinks(c echo.Context) error {
	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return invalidRequest("limit must be an integer")
	}

	links, err := h.linkService.ListLinks(c.Request().Context(), limit)
	if err != nil {
		return errorResponse(err)
	}

	items := make([]LinkResponse, 0, len(links))
	for i := range links {
		items = append(items, NewLinkResponse(&links[i]))
	}
	return c.JSON(http.StatusOK, ListLinksResponse{Items: items})
}
