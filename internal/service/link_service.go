package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paylinks/internal/config"
	apperrors "paylinks/internal/errors"
	"paylinks/internal/model"
	"paylinks/internal/processor"
	"paylinks/internal/repository"
)

const (
	// DefaultListLimit is used when the caller does not pass a limit.
	DefaultListLimit = 20
	// MaxListLimit caps a single listing.
	MaxListLimit = 100

	defaultCurrency = "MXN"
	// amountScale is the number of decimal places an amount may carry.
	amountScale = 2
)

// CreateLinkInput is the caller-supplied part of a new payment link.
// A nil Description selects model.DefaultDescription.
type CreateLinkInput struct {
	User        string `validate:"required"`
	Amount      decimal.Decimal
	Description *string
}

// CreateLinkResult is returned once a link is stored.
type CreateLinkResult struct {
	ID                   string
	Status               string
	PaymentURL           string
	ProviderPreferenceID string
}

// LinkService creates and reads payment links.
type LinkService interface {
	CreateLink(ctx context.Context, in CreateLinkInput) (*CreateLinkResult, error)
	// GetLink reports false when no link has the id.
	GetLink(ctx context.Context, id string) (*model.PaymentLink, bool, error)
	// ListLinks returns up to limit links in store order, which is unspecified.
	ListLinks(ctx context.Context, limit int) ([]model.PaymentLink, error)
	// Ping checks that the store answers.
	Ping(ctx context.Context) error
}

type linkService struct {
	deps
	repo      repository.LinkRepository
	processor processor.Processor
	cfg       config.ProcessorConfig
	validate  *validator.Validate
}

// NewLinkService creates a link service. proc may be nil when the processor
// integration is disabled; creation then fails with a configuration error.
func NewLinkService(
	repo repository.LinkRepository,
	proc processor.Processor,
	cfg config.ProcessorConfig,
	opts ...Option,
) LinkService {
	d := newDeps(opts)
	d.log = d.log.With(zap.String("service", "links"))
	return &linkService{
		deps:      d,
		repo:      repo,
		processor: proc,
		cfg:       cfg,
		validate:  validator.New(),
	}
}

// CreateLink registers a checkout preference with the processor and stores
// the resulting link with status CREATED.
func (s *linkService) CreateLink(ctx context.Context, in CreateLinkInput) (res *CreateLinkResult, err error) {
	defer func() {
		s.metrics.LinksCreated.WithLabelValues(outcomeLabel(err)).Inc()
	}()

	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if s.processor == nil {
		return nil, apperrors.Configuration("payment processor integration unavailable")
	}
	if !s.processor.Configured() {
		return nil, apperrors.Configuration("missing processor access token")
	}

	id := uuid.NewString()
	description := model.DefaultDescription
	if in.Description != nil {
		description = *in.Description
	}

	start := time.Now()
	pref, err := s.processor.CreatePreference(ctx, s.preferenceRequest(id, in.User, in.Amount, description))
	s.metrics.ObserveProcessor("create_preference", start, err)
	if err != nil {
		s.log.Warn("Processor rejected checkout preference", zap.String("link_id", id), zap.Error(err))
		return nil, apperrors.Upstream("create checkout preference", err)
	}
	paymentURL := pref.CheckoutURL()
	if paymentURL == "" || pref.ID == "" {
		s.log.Warn("Processor returned incomplete preference",
			zap.String("link_id", id),
			zap.String("preference_id", pref.ID),
		)
		return nil, apperrors.Upstream("invalid response from payment processor", nil)
	}

	link := &model.PaymentLink{
		ID:                   id,
		User:                 in.User,
		Amount:               in.Amount,
		Description:          description,
		Status:               model.LinkStatusCreated,
		PaymentProvider:      model.ProviderMercadoPago,
		ProviderPreferenceID: pref.ID,
		PaymentURL:           paymentURL,
		CreatedAt:            s.timestamp(),
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.repo.Put(storeCtx, link); err != nil {
		// The preference stays open at the processor with no local record.
		s.metrics.OrphanedPreferences.Inc()
		s.log.Error("Failed to store payment link after preference was created",
			zap.String("link_id", id),
			zap.String("preference_id", pref.ID),
			zap.Error(err),
		)
		return nil, apperrors.Store("store payment link", err)
	}

	s.log.Info("Payment link created",
		zap.String("link_id", id),
		zap.String("preference_id", pref.ID),
		zap.String("amount", in.Amount.String()),
	)

	return &CreateLinkResult{
		ID:                   link.ID,
		Status:               link.Status,
		PaymentURL:           link.PaymentURL,
		ProviderPreferenceID: link.ProviderPreferenceID,
	}, nil
}

func (s *linkService) validateInput(in CreateLinkInput) error {
	fields := map[string]string{}
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperrors.Validation("invalid input", nil)
		}
		for _, fe := range verrs {
			if fe.Field() == "User" {
				fields["user"] = "user is required"
			}
		}
	}
	switch {
	case !in.Amount.IsPositive():
		fields["amount"] = "amount must be > 0"
	case !in.Amount.Equal(in.Amount.Round(amountScale)):
		fields["amount"] = "amount must have at most 2 decimal places"
	}
	if len(fields) > 0 {
		return apperrors.Validation("invalid payment link input", fields)
	}
	return nil
}

func (s *linkService) preferenceRequest(id, user string, amount decimal.Decimal, description string) processor.PreferenceRequest {
	title := description
	if title == "" {
		title = fmt.Sprintf("Payment for %s", user)
	}
	currency := s.cfg.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	return processor.PreferenceRequest{
		Items: []processor.PreferenceItem{{
			Title:      title,
			Quantity:   1,
			UnitPrice:  json.Number(amount.StringFixed(amountScale)),
			CurrencyID: currency,
		}},
		ExternalReference: id,
		BackURLs: processor.BackURLs{
			Success: s.cfg.SuccessURL,
			Failure: s.cfg.FailureURL,
			Pending: s.cfg.PendingURL,
		},
		AutoReturn: "approved",
		Metadata:   map[string]string{"user": user},
	}
}

// GetLink loads one link.
func (s *linkService) GetLink(ctx context.Context, id string) (*model.PaymentLink, bool, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	link, err := s.repo.Get(storeCtx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		s.log.Error("Failed to read payment link", zap.String("link_id", id), zap.Error(err))
		return nil, false, apperrors.Store("read payment link", err)
	}
	return link, true, nil
}

// ListLinks clamps limit to [1, MaxListLimit]; zero selects DefaultListLimit.
func (s *linkService) ListLinks(ctx context.Context, limit int) ([]model.PaymentLink, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	links, err := s.repo.Scan(storeCtx, ClampLimit(limit))
	if err != nil {
		s.log.Error("Failed to list payment links", zap.Error(err))
		return nil, apperrors.Store("list payment links", err)
	}
	return links, nil
}

func (s *linkService) Ping(ctx context.Context) error {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.repo.Ping(storeCtx)
}

// ClampLimit applies the listing defaults.
func ClampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultListLimit
	case limit < 1:
		return 1
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
