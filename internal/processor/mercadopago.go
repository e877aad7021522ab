package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cast"
	"github.com/valyala/fasthttp"
)

// DefaultBaseURL is the public Mercado Pago API endpoint.
const DefaultBaseURL = "https://api.mercadopago.com"

// MercadoPago calls the Mercado Pago REST API over fasthttp.
type MercadoPago struct {
	client      *fasthttp.Client
	baseURL     string
	accessToken string
	timeout     time.Duration
}

// NewMercadoPago creates a client. An empty baseURL selects DefaultBaseURL.
func NewMercadoPago(accessToken, baseURL string, timeout time.Duration) *MercadoPago {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MercadoPago{
		client: &fasthttp.Client{
			Name:                "paylinks",
			MaxIdleConnDuration: time.Minute,
		},
		baseURL:     baseURL,
		accessToken: accessToken,
		timeout:     timeout,
	}
}

// Configured reports whether an access token is set.
func (m *MercadoPago) Configured() bool {
	return m.accessToken != ""
}

// CreatePreference posts a checkout preference.
func (m *MercadoPago) CreatePreference(ctx context.Context, in PreferenceRequest) (*Preference, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode preference: %w", err)
	}

	var pref Preference
	if err := m.do(ctx, fasthttp.MethodPost, "/checkout/preferences", body, &pref); err != nil {
		return nil, err
	}
	return &pref, nil
}

type paymentResponse struct {
	ID                any    `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

// GetPayment fetches a payment by its processor id.
func (m *MercadoPago) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var resp paymentResponse
	if err := m.do(ctx, fasthttp.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil, &resp); err != nil {
		return nil, err
	}

	id, err := cast.ToStringE(resp.ID)
	if err != nil || id == "" {
		id = paymentID
	}
	return &Payment{
		ID:                id,
		Status:            resp.Status,
		ExternalReference: resp.ExternalReference,
	}, nil
}

func (m *MercadoPago) do(ctx context.Context, method, path string, body []byte, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := m.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(m.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", "Bearer "+m.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	if err := m.client.DoTimeout(req, resp, timeout); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	if status != fasthttp.StatusOK && status != fasthttp.StatusCreated {
		return &APIError{StatusCode: status, Message: errorMessage(resp.Body())}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
