package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	BarberID uuid.UUID
	Phone    string
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to barbers.
type AccessTokenClaims struct {
	BarberID uuid.UUID `json:"barber_id"`
	Phone    string    `json:"phone,omitempty"`
	jwt.RegisteredClaims
}
