package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestBarbersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_barbers.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS barbers",
		"CHECK (price > 0)",
		"ux_barbers_phone",
		"trial_expires_at timestamptz",
		"subscription_expires_at timestamptz",
		"DROP TABLE IF EXISTS barbers",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPaymentsMigrationEnforcesUniqueReference(t *testing.T) {
	content := readMigration(t, "*_create_payments.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS payments",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_payments_reference",
		"FOREIGN KEY (barber_id) REFERENCES barbers(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS payments",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRatingsMigrationEnforcesOnePerCustomer(t *testing.T) {
	content := readMigration(t, "*_create_barber_ratings.sql")

	if !strings.Contains(content, "ux_barber_ratings_barber_customer") {
		t.Error("missing unique (barber_id, customer_id) index")
	}
	if !strings.Contains(content, "CHECK (value BETWEEN 1 AND 5)") {
		t.Error("missing rating bounds check")
	}
}
