package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcoberry/barberhub-backend/pkg/enums"
)

// EngagementCounter is a per-day bucketed interaction tally.
type EngagementCounter struct {
	ID        uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BarberID  uuid.UUID            `gorm:"column:barber_id;type:uuid;not null;uniqueIndex:ux_engagement_barber_day_kind"`
	Day       time.Time            `gorm:"column:day;type:date;not null;uniqueIndex:ux_engagement_barber_day_kind"`
	Kind      enums.EngagementKind `gorm:"column:kind;not null;uniqueIndex:ux_engagement_barber_day_kind"`
	Count     int64                `gorm:"column:count;not null;default:0"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
