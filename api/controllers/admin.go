package controllers

import (
	"net/http"

	"github.com/marcoberry/barberhub-backend/api/responses"
	"github.com/marcoberry/barberhub-backend/internal/admin"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
)

// AdminDashboard returns the operator overview.
func AdminDashboard(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dashboard, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}

// AdminDeleteBarber removes a barber account outright.
func AdminDeleteBarber(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		barberID, err := uuidParam(r, "barberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteBarber(r.Context(), barberID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
