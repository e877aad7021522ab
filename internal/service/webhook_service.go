package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"paylinks/internal/config"
	apperrors "paylinks/internal/errors"
	"paylinks/internal/events"
	"paylinks/internal/model"
	"paylinks/internal/processor"
	"paylinks/internal/repository"
)

const (
	ModeSimulated = "simulated"
	ModeProcessor = "processor"

	publishTimeout = 5 * time.Second
)

// Notification is an inbound webhook payload. ExternalReference and Status
// are set only when the body carried them; together they form the
// simulation shape.
type Notification struct {
	ExternalReference *string
	Status            *string
	Type              string
	DataID            string
	// SimulationAuthorized is set by the transport once the caller proved
	// it may use the simulation shape.
	SimulationAuthorized bool
}

// WebhookResult describes the reconciled record.
type WebhookResult struct {
	ID        string
	Status    string
	PaymentID string
	Mode      string
}

// WebhookService reconciles processor notifications into link status.
type WebhookService interface {
	Handle(ctx context.Context, n Notification) (*WebhookResult, error)
}

type webhookService struct {
	deps
	repo      repository.LinkRepository
	processor processor.Processor
	cfg       config.WebhookConfig
}

// NewWebhookService creates a webhook service. proc may be nil.
func NewWebhookService(
	repo repository.LinkRepository,
	proc processor.Processor,
	cfg config.WebhookConfig,
	opts ...Option,
) WebhookService {
	d := newDeps(opts)
	d.log = d.log.With(zap.String("service", "webhook"))
	return &webhookService{
		deps:      d,
		repo:      repo,
		processor: proc,
		cfg:       cfg,
	}
}

// Handle applies a notification. Updates are last-write-wins: a later
// notification may move a status backward.
func (s *webhookService) Handle(ctx context.Context, n Notification) (res *WebhookResult, err error) {
	mode := ModeProcessor
	if s.simulationAllowed(n) {
		mode = ModeSimulated
	} else if n.ExternalReference != nil && n.Status != nil {
		s.log.Warn("Ignoring simulation payload",
			zap.Bool("simulation_enabled", s.cfg.SimulationEnabled),
			zap.Bool("authorized", n.SimulationAuthorized),
		)
	}
	defer func() {
		s.metrics.Notifications.WithLabelValues(mode, outcomeLabel(err)).Inc()
	}()

	if mode == ModeSimulated {
		return s.handleSimulated(ctx, *n.ExternalReference, *n.Status)
	}
	return s.handleProcessorEvent(ctx, n)
}

func (s *webhookService) simulationAllowed(n Notification) bool {
	return s.cfg.SimulationEnabled && n.SimulationAuthorized &&
		n.ExternalReference != nil && n.Status != nil
}

// handleSimulated writes the status directly. A missing record is a no-op.
func (s *webhookService) handleSimulated(ctx context.Context, id, status string) (*WebhookResult, error) {
	patch := model.LinkPatch{Status: status, UpdatedAt: s.timestamp()}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	err := s.repo.Update(storeCtx, id, patch)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.log.Warn("Simulated notification for unknown link", zap.String("link_id", id))
	case err != nil:
		s.log.Error("Failed to apply simulated notification", zap.String("link_id", id), zap.Error(err))
		return nil, apperrors.Store("update payment link", err)
	default:
		s.log.Info("Simulated status applied", zap.String("link_id", id), zap.String("status", status))
		s.publish(ctx, id, status, "", ModeSimulated, patch.UpdatedAt)
	}

	return &WebhookResult{ID: id, Status: status, Mode: ModeSimulated}, nil
}

func (s *webhookService) handleProcessorEvent(ctx context.Context, n Notification) (*WebhookResult, error) {
	if s.processor == nil || !s.processor.Configured() {
		return nil, apperrors.Configuration("payment processor integration unavailable")
	}
	if n.DataID == "" {
		return nil, apperrors.Validation("missing data.id", map[string]string{"data.id": "data.id is required"})
	}

	start := time.Now()
	payment, err := s.processor.GetPayment(ctx, n.DataID)
	s.metrics.ObserveProcessor("get_payment", start, err)
	if err != nil {
		s.log.Warn("Payment lookup failed", zap.String("payment_id", n.DataID), zap.Error(err))
		return nil, apperrors.Upstream("get payment", err)
	}
	if payment.ExternalReference == "" {
		return nil, apperrors.Validation("payment has no external_reference",
			map[string]string{"external_reference": "payment is not linked to a payment link"})
	}
	if payment.Status == "" {
		return nil, apperrors.Upstream("payment has no status", nil)
	}

	id := payment.ExternalReference
	paymentID := n.DataID
	patch := model.LinkPatch{
		Status:            payment.Status,
		ProviderPaymentID: &paymentID,
		UpdatedAt:         s.timestamp(),
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.repo.Update(storeCtx, id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("Payment references unknown link",
				zap.String("link_id", id),
				zap.String("payment_id", paymentID),
			)
			return nil, apperrors.NotFound(id)
		}
		s.log.Error("Failed to apply payment notification", zap.String("link_id", id), zap.Error(err))
		return nil, apperrors.Store("update payment link", err)
	}

	s.log.Info("Payment status reconciled",
		zap.String("link_id", id),
		zap.String("payment_id", paymentID),
		zap.String("status", payment.Status),
		zap.String("type", n.Type),
	)
	s.publish(ctx, id, payment.Status, paymentID, ModeProcessor, patch.UpdatedAt)

	return &WebhookResult{ID: id, Status: payment.Status, PaymentID: paymentID, Mode: ModeProcessor}, nil
}

// publish is best-effort; the update already happened.
func (s *webhookService) publish(ctx context.Context, id, status, paymentID, mode string, at time.Time) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := s.publisher.PublishStatusChanged(pubCtx, events.StatusChanged{
		Type:      events.TypeStatusChanged,
		LinkID:    id,
		Status:    status,
		PaymentID: paymentID,
		Mode:      mode,
		At:        at,
	})
	if err != nil {
		s.metrics.EventPublishFailures.Inc()
		s.log.Warn("Failed to publish status change", zap.String("link_id", id), zap.Error(err))
	}
}
