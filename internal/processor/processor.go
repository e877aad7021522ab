package processor

import (
	"context"
	"encoding/json"
	"fmt"
)

// Processor is the external payment processor the service talks to.
type Processor interface {
	// Configured reports whether credentials are present.
	Configured() bool
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// PreferenceItem is a single checkout line.
type PreferenceItem struct {
	Title      string      `json:"title"`
	Quantity   int         `json:"quantity"`
	UnitPrice  json.Number `json:"unit_price"`
	CurrencyID string      `json:"currency_id"`
}

// BackURLs are the pages the payer is redirected to after checkout.
type BackURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

// PreferenceRequest creates a hosted checkout session.
type PreferenceRequest struct {
	Items             []PreferenceItem  `json:"items"`
	ExternalReference string            `json:"external_reference"`
	BackURLs          BackURLs          `json:"back_urls"`
	AutoReturn        string            `json:"auto_return,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// Preference is the processor's answer to a checkout request.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CheckoutURL returns init_point, falling back to sandbox_init_point.
func (p *Preference) CheckoutURL() string {
	if p.InitPoint != "" {
		return p.InitPoint
	}
	return p.SandboxInitPoint
}

// Payment is the subset of a processor payment the service reconciles.
type Payment struct {
	ID                string
	Status            string
	ExternalReference string
}

// APIError is returned when the processor answers with a status other than 200 or 201.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("processor responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("processor responded with status %d: %s", e.StatusCode, e.Message)
}
