package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// LinkStatusCreated is the status of a link before any notification is reconciled.
	LinkStatusCreated = "CREATED"

	// ProviderMercadoPago tags records created through the Mercado Pago integration.
	ProviderMercadoPago = "mercadopago"

	// DefaultDescription is used when the caller omits a description.
	DefaultDescription = "Payment Link"
)

// PaymentLink is the persisted record of one hosted checkout link.
// Status is deliberately a free string: after creation it carries whatever
// lifecycle value the processor reports (approved, pending, rejected, ...).
type PaymentLink struct {
	ID                   string          `json:"id" gorm:"type:char(36);primaryKey"`
	User                 string          `json:"user" gorm:"size:255;not null;index"`
	Amount               decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Description          string          `json:"description" gorm:"size:255"`
	Status               string          `json:"status" gorm:"type:varchar(32);not null;index"`
	PaymentProvider      string          `json:"payment_provider" gorm:"type:varchar(32);not null"`
	ProviderPreferenceID string          `json:"provider_preference_id" gorm:"size:128;index"`
	PaymentURL           string          `json:"payment_url" gorm:"size:512"`
	ProviderPaymentID    *string         `json:"provider_payment_id,omitempty" gorm:"size:128"`
	CreatedAt            time.Time       `json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt            *time.Time      `json:"updated_at,omitempty" gorm:"autoUpdateTime:false"`
}

// TableName keeps the SQL table aligned with the key-value table name used elsewhere.
func (PaymentLink) TableName() string {
	return "payment_links"
}

// LinkPatch is the only mutation a stored link accepts. ProviderPaymentID is
// left untouched when nil.
type LinkPatch struct {
	Status            string
	ProviderPaymentID *string
	UpdatedAt         time.Time
}

// Apply writes the patch onto the link in place.
func (p LinkPatch) Apply(link *PaymentLink) {
	link.Status = p.Status
	if p.ProviderPaymentID != nil {
		id := *p.ProviderPaymentID
		link.ProviderPaymentID = &id
	}
	updated := p.UpdatedAt
	link.UpdatedAt = &updated
}

// TimestampLayout is the ISO-8601 UTC layout used for persisted timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// FormatTimestamp renders t in UTC with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
