package processor

import (
	"context"
	"fmt"
	"sync"
)

// Fake is an in-memory Processor for tests and local development.
type Fake struct {
	mu sync.Mutex

	NoCredentials bool
	Preference    *Preference
	PreferenceErr error
	Payments      map[string]*Payment
	PaymentErr    error

	Requests       []PreferenceRequest
	PaymentLookups []string
}

// NewFake returns a configured Fake answering every checkout request with
// a preference derived from the request's external reference.
func NewFake() *Fake {
	return &Fake{Payments: make(map[string]*Payment)}
}

// Configured implements Processor.
func (f *Fake) Configured() bool {
	return !f.NoCredentials
}

// CreatePreference implements Processor.
func (f *Fake) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests = append(f.Requests, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.PreferenceErr != nil {
		return nil, f.PreferenceErr
	}
	if f.Preference != nil {
		pref := *f.Preference
		return &pref, nil
	}
	return &Preference{
		ID:        "pref-" + req.ExternalReference,
		InitPoint: "https://checkout.example/" + req.ExternalReference,
	}, nil
}

// GetPayment implements Processor.
func (f *Fake) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.PaymentLookups = append(f.PaymentLookups, paymentID)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.PaymentErr != nil {
		return nil, f.PaymentErr
	}
	payment, ok := f.Payments[paymentID]
	if !ok {
		return nil, &APIError{StatusCode: 404, Message: fmt.Sprintf("payment %s not found", paymentID)}
	}
	p := *payment
	return &p, nil
}

// SetPayment registers a payment the fake will return.
func (f *Fake) SetPayment(p Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Payments[p.ID] = &p
}

// CreateCalls returns how many checkout requests were made.
func (f *Fake) CreateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// LastRequest returns the most recent checkout request.
func (f *Fake) LastRequest() (PreferenceRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Requests) == 0 {
		return PreferenceRequest{}, false
	}
	return f.Requests[len(f.Requests)-1], true
}

// LookupCalls returns how many payment lookups were made.
func (f *Fake) LookupCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.PaymentLookups)
}
