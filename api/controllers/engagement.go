package controllers

import (
	"net/http"
	"time"

	"github.com/marcoberry/barberhub-backend/api/middleware"
	"github.com/marcoberry/barberhub-backend/api/responses"
	"github.com/marcoberry/barberhub-backend/api/validators"
	"github.com/marcoberry/barberhub-backend/internal/engagement"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
)

// RecordClick counts one contact click against a barber profile.
func RecordClick(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		barberID, err := uuidParam(r, "barberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RecordClick(r.Context(), barberID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "counted"})
	}
}

// RecordImpression counts one listing impression against a barber profile.
func RecordImpression(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		barberID, err := uuidParam(r, "barberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RecordImpression(r.Context(), barberID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "counted"})
	}
}

// MyEngagement summarizes recent clicks and impressions for the
// authenticated barber. An optional days query parameter bounds the window.
func MyEngagement(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		barberID := middleware.BarberIDFromContext(r.Context())

		days, err := validators.ParseQueryInt(r, "days", 0, 1, 365)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		window := time.Duration(days) * 24 * time.Hour

		summary, err := svc.Summary(r.Context(), barberID, window)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
