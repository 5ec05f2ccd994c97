package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/marcoberry/barberhub-backend/api/responses"
	"github.com/marcoberry/barberhub-backend/api/validators"
	"github.com/marcoberry/barberhub-backend/internal/barbers"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
)

type rateRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid4"`
	Value      int    `json:"value" validate:"required,min=1,max=5"`
}

type reviewRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid4"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"required,max=2000"`
}

// ListBarbers returns the customer-facing list of currently visible barbers.
func ListBarbers(svc barbers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles, err := svc.ListVisible(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profiles)
	}
}

// GetBarber returns one profile with its lifecycle recomputed at read time.
func GetBarber(svc barbers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "barberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// GetBarberStatus returns the lifecycle summary for one barber.
func GetBarberStatus(svc barbers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "barberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.Status(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// RateBarber records one customer's score and returns the new mean.
func RateBarber(svc barbers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "barberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req rateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		average, err := svc.Rate(r.Context(), barbers.RateParams{
			BarberID:   id,
			CustomerID: customerID,
			Value:      req.Value,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]float64{"average_rating": average})
	}
}

// ReviewBarber records free-form customer feedback.
func ReviewBarber(svc barbers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "barberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reviewRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.AddReview(r.Context(), barbers.ReviewParams{
			BarberID:   id,
			CustomerID: customerID,
			Rating:     req.Rating,
			Comment:    validators.SanitizeString(req.Comment, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "recorded"})
	}
}

// BarberWhatsAppLink returns a prefilled WhatsApp deep link for a visible barber.
func BarberWhatsAppLink(svc barbers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "barberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		link, err := svc.WhatsAppLink(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"link": link})
	}
}

// BarberCallLink returns a tel: link for a visible barber.
func BarberCallLink(svc barbers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "barberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		link, err := svc.CallLink(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"link": link})
	}
}
