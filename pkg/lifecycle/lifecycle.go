package lifecycle

import "time"

// Status is the buyer-facing lifecycle label for a barber profile.
type Status string

const (
	StatusActivePaid Status = "ActivePaid"
	StatusFreeTrial  Status = "FreeTrial"
	StatusHidden     Status = "Hidden"
)

// State is the minimal snapshot of a barber record the engine needs. Nil
// timestamps mean the corresponding window was never granted.
type State struct {
	TrialExpiresAt        *time.Time
	SubscriptionExpiresAt *time.Time
}

// Result is the canonical lifecycle outcome for a record at an instant.
// Callers persist or serve these fields verbatim; nothing else in the
// codebase may derive visibility on its own.
type Result struct {
	SubscriptionActive bool
	Visible            bool
	Status             Status
}

// Evaluate computes the lifecycle outcome for state at now. A paid
// subscription takes precedence over an unexpired trial, and expiry at the
// exact boundary instant counts as expired.
func Evaluate(state State, now time.Time) Result {
	paid := state.SubscriptionExpiresAt != nil && now.Before(*state.SubscriptionExpiresAt)
	trial := state.TrialExpiresAt != nil && now.Before(*state.TrialExpiresAt)

	result := Result{
		SubscriptionActive: paid,
		Visible:            paid || trial,
		Status:             StatusHidden,
	}

	switch {
	case paid:
		result.Status = StatusActivePaid
	case trial:
		result.Status = StatusFreeTrial
	}

	return result
}

// Changed reports whether persisting result would alter the stored flags.
func Changed(storedActive, storedVisible bool, result Result) bool {
	return storedActive != result.SubscriptionActive || storedVisible != result.Visible
}
