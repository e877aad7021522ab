package repository

import (
	"context"
	"sync"

	"paylinks/internal/model"
)

// MemoryLinkRepository keeps links in process memory. It backs the "memory"
// store driver and the service tests.
type MemoryLinkRepository struct {
	mu    sync.RWMutex
	links map[string]model.PaymentLink
	// writes counts successful Put and Update calls.
	writes int
}

// NewMemoryLinkRepository creates an empty in-memory repository.
func NewMemoryLinkRepository() *MemoryLinkRepository {
	return &MemoryLinkRepository{links: make(map[string]model.PaymentLink)}
}

var _ LinkRepository = (*MemoryLinkRepository)(nil)

func (r *MemoryLinkRepository) Get(ctx context.Context, id string) (*model.PaymentLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.links[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneLink(link), nil
}

func (r *MemoryLinkRepository) Put(ctx context.Context, link *model.PaymentLink) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.links[link.ID]; ok {
		return ErrAlreadyExists
	}
	r.links[link.ID] = *cloneLink(*link)
	r.writes++
	return nil
}

func (r *MemoryLinkRepository) Update(ctx context.Context, id string, patch model.LinkPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[id]
	if !ok {
		return ErrNotFound
	}
	patch.Apply(&link)
	r.links[id] = link
	r.writes++
	return nil
}

// Scan iterates the map, so the order is intentionally random.
func (r *MemoryLinkRepository) Scan(ctx context.Context, limit int) ([]model.PaymentLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.PaymentLink, 0, min(limit, len(r.links)))
	for _, link := range r.links {
		if len(out) >= limit {
			break
		}
		out = append(out, *cloneLink(link))
	}
	return out, nil
}

func (r *MemoryLinkRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len reports how many links are stored.
func (r *MemoryLinkRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.links)
}

// Writes reports how many successful writes the repository has accepted.
func (r *MemoryLinkRepository) Writes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes
}

func cloneLink(link model.PaymentLink) *model.PaymentLink {
	out := link
	if link.ProviderPaymentID != nil {
		id := *link.ProviderPaymentID
		out.ProviderPaymentID = &id
	}
	if link.UpdatedAt != nil {
		ts := *link.UpdatedAt
		out.UpdatedAt = &ts
	}
	return &out
}
