package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification stores in-app notification payloads scoped to barbers.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BarberID  uuid.UUID  `gorm:"column:barber_id;type:uuid;not null;index"`
	Message   string     `gorm:"column:message;type:text;not null"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
