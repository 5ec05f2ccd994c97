package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marcoberry/barberhub-backend/pkg/enums"
)

// Payment is the immutable audit row for a verified gateway transaction. The
// unique index on reference is the backstop against replayed webhooks.
type Payment struct {
	ID        uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BarberID  uuid.UUID           `gorm:"column:barber_id;type:uuid;not null;index"`
	Reference string              `gorm:"column:reference;not null;uniqueIndex:ux_payments_reference"`
	Amount    decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency  string              `gorm:"column:currency;not null"`
	Status    enums.PaymentStatus `gorm:"column:status;not null"`
	PaidAt    *time.Time          `gorm:"column:paid_at"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}
