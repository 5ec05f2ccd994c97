package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/marcoberry/barberhub-backend/api/responses"
	"github.com/marcoberry/barberhub-backend/pkg/config"
	pkgerrors "github.com/marcoberry/barberhub-backend/pkg/errors"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
)

const adminSecretHeader = "X-Admin-Secret"

// AdminSecret gates the operator surface behind a shared secret header. When
// no secret is configured, the surface is disabled outright rather than left
// open.
func AdminSecret(cfg config.AdminConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.SharedSecret == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "not found"))
				return
			}

			provided := strings.TrimSpace(r.Header.Get(adminSecretHeader))
			if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.SharedSecret)) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid admin credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
