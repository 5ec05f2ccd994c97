package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/marcoberry/barberhub-backend/api/middleware"
	"github.com/marcoberry/barberhub-backend/api/responses"
	"github.com/marcoberry/barberhub-backend/api/validators"
	"github.com/marcoberry/barberhub-backend/internal/payments"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
)

type verifyPaymentRequest struct {
	BarberID  string `json:"barber_id" validate:"required,uuid4"`
	Reference string `json:"reference" validate:"required,max=128"`
}

// VerifyPayment reconciles a gateway reference into subscription time.
func VerifyPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		barberID, err := uuid.Parse(req.BarberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Reconcile(r.Context(), barberID, req.Reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MyPayments lists the authenticated barber's payment audit trail.
func MyPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		barberID := middleware.BarberIDFromContext(r.Context())

		history, err := svc.History(r.Context(), barberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}
