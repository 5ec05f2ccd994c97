package models

import (
	"time"

	"github.com/google/uuid"
)

// BarberRating is a single 1-5 score. The composite unique index keeps each
// customer to one rating per barber.
type BarberRating struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BarberID   uuid.UUID `gorm:"column:barber_id;type:uuid;not null;uniqueIndex:ux_barber_ratings_barber_customer"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:ux_barber_ratings_barber_customer"`
	Value      int       `gorm:"column:value;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
