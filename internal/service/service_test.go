package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"paylinks/internal/events"
	"paylinks/internal/model"
	"paylinks/internal/repository"
)

// steppingClock returns a clock that advances one second on every call.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func strPtr(s string) *string { return &s }

// MockLinkRepository is a mock implementation of repository.LinkRepository.
type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) Get(ctx context.Context, id string) (*model.PaymentLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentLink), args.Error(1)
}

func (m *MockLinkRepository) Put(ctx context.Context, link *model.PaymentLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockLinkRepository) Update(ctx context.Context, id string, patch model.LinkPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockLinkRepository) Scan(ctx context.Context, limit int) ([]model.PaymentLink, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentLink), args.Error(1)
}

func (m *MockLinkRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ repository.LinkRepository = (*MockLinkRepository)(nil)

// recordingPublisher keeps published events and can be told to fail.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.StatusChanged
	err    error
}

func (p *recordingPublisher) PublishStatusChanged(_ context.Context, e events.StatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []events.StatusChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.StatusChanged(nil), p.events...)
}

func seedLink(t *testing.T, repo repository.LinkRepository, id string) *model.PaymentLink {
	t.Helper()
	link := &model.PaymentLink{
		ID:                   id,
		User:                 "user-1",
		Amount:               decimal.RequireFromString("100.00"),
		Description:          model.DefaultDescription,
		Status:               model.LinkStatusCreated,
		PaymentProvider:      model.ProviderMercadoPago,
		ProviderPreferenceID: "pref-" + id,
		PaymentURL:           "https://checkout.example/" + id,
		CreatedAt:            time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := repo.Put(context.Background(), link); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
	return link
}

func seedLinks(t *testing.T, repo repository.LinkRepository, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		seedLink(t, repo, fmt.Sprintf("seed-%d", i))
	}
}

var errBoom = errors.New("boom")
