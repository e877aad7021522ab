package repository

import (
	"context"
	"errors"

	"paylinks/internal/model"
)

var (
	// ErrNotFound is returned when no link exists for the given id.
	ErrNotFound = errors.New("payment link not found")
	// ErrAlreadyExists is returned when Put is called for an id that is already stored.
	ErrAlreadyExists = errors.New("payment link already exists")
)

// LinkRepository defines payment link persistence operations against a
// single table keyed by link id.
type LinkRepository interface {
	// Get returns ErrNotFound when the id is unknown.
	Get(ctx context.Context, id string) (*model.PaymentLink, error)
	// Put stores a new link and returns ErrAlreadyExists if the id is taken.
	Put(ctx context.Context, link *model.PaymentLink) error
	// Update applies patch to an existing link and returns ErrNotFound if
	// there is none. It never creates a record.
	Update(ctx context.Context, id string, patch model.LinkPatch) error
	// Scan returns at most limit links. The order is whatever the backing
	// store yields and must not be relied upon.
	Scan(ctx context.Context, limit int) ([]model.PaymentLink, error)
	Ping(ctx context.Context) error
}
