package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"paylinks/internal/model"
)

type gormLinkRepository struct {
	db *gorm.DB
}

// NewGormLinkRepository creates a link repository backed by MySQL or Postgres through GORM.
func NewGormLinkRepository(db *gorm.DB) LinkRepository {
	return &gormLinkRepository{db: db}
}

// Migrate creates or updates the payment_links table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.PaymentLink{})
}

// Get finds a link by ID.
func (r *gormLinkRepository) Get(ctx context.Context, id string) (*model.PaymentLink, error) {
	var link model.PaymentLink
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find link %s: %w", id, err)
	}
	return &link, nil
}

// Put inserts a new link.
func (r *gormLinkRepository) Put(ctx context.Context, link *model.PaymentLink) error {
	err := r.db.WithContext(ctx).Create(link).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create link %s: %w", link.ID, err)
	}
	return nil
}

// Update writes the patched columns only.
func (r *gormLinkRepository) Update(ctx context.Context, id string, patch model.LinkPatch) error {
	columns := map[string]interface{}{
		"status":     patch.Status,
		"updated_at": patch.UpdatedAt,
	}
	if patch.ProviderPaymentID != nil {
		columns["provider_payment_id"] = *patch.ProviderPaymentID
	}

	result := r.db.WithContext(ctx).Model(&model.PaymentLink{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return fmt.Errorf("update link %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Scan returns up to limit links without any ORDER BY.
func (r *gormLinkRepository) Scan(ctx context.Context, limit int) ([]model.PaymentLink, error) {
	var links []model.PaymentLink
	if err := r.db.WithContext(ctx).Limit(limit).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("scan links: %w", err)
	}
	return links, nil
}

// Ping checks the underlying connection pool.
func (r *gormLinkRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
