package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ctxBarberID contextKey = "barber_id"

// BarberIDFromContext returns the authenticated barber's id, or uuid.Nil when
// the request carried no valid token.
func BarberIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxBarberID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// WithBarberID injects the barber identifier into the context.
func WithBarberID(ctx context.Context, barberID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxBarberID, barberID)
}
