package middleware

import (
	"net/http"
	"strings"

	"github.com/marcoberry/barberhub-backend/api/responses"
	pkgauth "github.com/marcoberry/barberhub-backend/pkg/auth"
	"github.com/marcoberry/barberhub-backend/pkg/config"
	pkgerrors "github.com/marcoberry/barberhub-backend/pkg/errors"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// authenticated barber.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithBarberID(r.Context(), claims.BarberID)
			if logg != nil {
				ctx = logg.WithBarberID(ctx, claims.BarberID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
