package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Service is a single offering on a barber's price list.
type Service struct {
	Name            string          `json:"name"`
	Cost            decimal.Decimal `json:"cost"`
	DurationMinutes int             `json:"duration_minutes"`
}

// ServiceList persists a barber's offerings as JSONB.
type ServiceList []Service

// Value marshals the list into JSON for Postgres.
func (l ServiceList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan decodes JSONB into the list.
func (l *ServiceList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	raw, err := asJSON(value)
	if err != nil {
		return fmt.Errorf("service list: %w", err)
	}

	result := ServiceList{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*l = result
	return nil
}
