package lifecycle

import (
	"testing"
	"time"
)

func ptr(t time.Time) *time.Time { return &t }

func TestEvaluate(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fresh trial is visible", func(t *testing.T) {
		res := Evaluate(State{TrialExpiresAt: ptr(now.Add(13 * 24 * time.Hour))}, now)
		if !res.Visible || res.SubscriptionActive || res.Status != StatusFreeTrial {
			t.Fatalf("unexpected result %+v", res)
		}
	})

	t.Run("expired trial hides the profile", func(t *testing.T) {
		res := Evaluate(State{TrialExpiresAt: ptr(now.Add(-24 * time.Hour))}, now)
		if res.Visible || res.SubscriptionActive || res.Status != StatusHidden {
			t.Fatalf("unexpected result %+v", res)
		}
	})

	t.Run("paid subscription is active and visible", func(t *testing.T) {
		res := Evaluate(State{
			TrialExpiresAt:        ptr(now.Add(-24 * time.Hour)),
			SubscriptionExpiresAt: ptr(now.Add(29 * 24 * time.Hour)),
		}, now)
		if !res.Visible || !res.SubscriptionActive || res.Status != StatusActivePaid {
			t.Fatalf("unexpected result %+v", res)
		}
	})

	t.Run("paid wins over a live trial", func(t *testing.T) {
		res := Evaluate(State{
			TrialExpiresAt:        ptr(now.Add(7 * 24 * time.Hour)),
			SubscriptionExpiresAt: ptr(now.Add(30 * 24 * time.Hour)),
		}, now)
		if res.Status != StatusActivePaid {
			t.Fatalf("expected ActivePaid, got %s", res.Status)
		}
	})

	t.Run("expired subscription falls back to trial", func(t *testing.T) {
		res := Evaluate(State{
			TrialExpiresAt:        ptr(now.Add(2 * 24 * time.Hour)),
			SubscriptionExpiresAt: ptr(now.Add(-time.Hour)),
		}, now)
		if !res.Visible || res.SubscriptionActive || res.Status != StatusFreeTrial {
			t.Fatalf("unexpected result %+v", res)
		}
	})

	t.Run("expiry boundary counts as expired", func(t *testing.T) {
		res := Evaluate(State{SubscriptionExpiresAt: ptr(now)}, now)
		if res.Visible || res.SubscriptionActive || res.Status != StatusHidden {
			t.Fatalf("unexpected result %+v", res)
		}
	})

	t.Run("nil timestamps are hidden", func(t *testing.T) {
		res := Evaluate(State{}, now)
		if res.Visible || res.SubscriptionActive || res.Status != StatusHidden {
			t.Fatalf("unexpected result %+v", res)
		}
	})
}

func TestEvaluateIsDeterministic(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	state := State{
		TrialExpiresAt:        ptr(now.Add(24 * time.Hour)),
		SubscriptionExpiresAt: ptr(now.Add(-24 * time.Hour)),
	}

	first := Evaluate(state, now)
	for i := 0; i < 10; i++ {
		if got := Evaluate(state, now); got != first {
			t.Fatalf("expected stable result, got %+v then %+v", first, got)
		}
	}
}

func TestChanged(t *testing.T) {
	res := Result{SubscriptionActive: false, Visible: true, Status: StatusFreeTrial}
	if Changed(false, true, res) {
		t.Fatal("identical flags should not report a change")
	}
	if !Changed(true, true, res) {
		t.Fatal("stale subscription_active should report a change")
	}
	if !Changed(false, false, res) {
		t.Fatal("stale visible should report a change")
	}
}
