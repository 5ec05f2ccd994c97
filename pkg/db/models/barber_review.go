package models

import (
	"time"

	"github.com/google/uuid"
)

// BarberReview is free-form customer feedback alongside an optional score.
type BarberReview struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BarberID   uuid.UUID `gorm:"column:barber_id;type:uuid;not null;index"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null"`
	Rating     int       `gorm:"column:rating;not null"`
	Comment    string    `gorm:"column:comment;type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
