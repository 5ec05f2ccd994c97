package models

import (
	"time"

	"github.com/google/uuid"
)

// BarberMedia is one uploaded gallery image. The per-barber cap is enforced in
// the media service inside the insert transaction.
type BarberMedia struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BarberID  uuid.UUID `gorm:"column:barber_id;type:uuid;not null;index"`
	PublicID  string    `gorm:"column:public_id;not null"`
	URL       string    `gorm:"column:url;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
