package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/marcoberry/barberhub-backend/pkg/db/types"
)

// Barber is the canonical provider record. The derived columns
// subscription_active, visible and average_rating are only ever written from
// recomputed values, never by hand.
type Barber struct {
	ID                    uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name                  string                   `gorm:"column:name;not null"`
	Phone                 string                   `gorm:"column:phone;not null;unique"`
	PasswordHash          string                   `gorm:"column:password_hash;not null"`
	Price                 decimal.Decimal          `gorm:"column:price;type:numeric(12,2);not null"`
	Lat                   float64                  `gorm:"column:lat;not null;default:0"`
	Lng                   float64                  `gorm:"column:lng;not null;default:0"`
	TrialExpiresAt        *time.Time               `gorm:"column:trial_expires_at"`
	SubscriptionExpiresAt *time.Time               `gorm:"column:subscription_expires_at"`
	SubscriptionActive    bool                     `gorm:"column:subscription_active;not null;default:false"`
	Visible               bool                     `gorm:"column:visible;not null;default:false"`
	AverageRating         float64                  `gorm:"column:average_rating;not null;default:0"`
	Services              dbtypes.ServiceList      `gorm:"column:services;type:jsonb"`
	Availability          dbtypes.AvailabilityList `gorm:"column:availability;type:jsonb"`
	CreatedAt             time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
