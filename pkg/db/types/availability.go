package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AvailabilityWindow is one weekly opening slot, times as "HH:MM".
type AvailabilityWindow struct {
	DayOfWeek int    `json:"day_of_week"`
	Open      string `json:"open"`
	Close     string `json:"close"`
}

// AvailabilityList persists a barber's weekly schedule as JSONB.
type AvailabilityList []AvailabilityWindow

// Value marshals the schedule into JSON for Postgres.
func (l AvailabilityList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan decodes JSONB into the schedule.
func (l *AvailabilityList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	raw, err := asJSON(value)
	if err != nil {
		return fmt.Errorf("availability list: %w", err)
	}

	result := AvailabilityList{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*l = result
	return nil
}
