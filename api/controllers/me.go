package controllers

import (
	"net/http"

	"github.com/marcoberry/barberhub-backend/api/middleware"
	"github.com/marcoberry/barberhub-backend/api/responses"
	"github.com/marcoberry/barberhub-backend/api/validators"
	"github.com/marcoberry/barberhub-backend/internal/barbers"
	dbtypes "github.com/marcoberry/barberhub-backend/pkg/db/types"
	pkgerrors "github.com/marcoberry/barberhub-backend/pkg/errors"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
)

type updatePriceRequest struct {
	Price string `json:"price" validate:"required"`
}

type addServiceRequest struct {
	Name            string `json:"name" validate:"required,max=120"`
	Cost            string `json:"cost" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=1,max=480"`
}

type availabilityWindowRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	Open      string `json:"open" validate:"required"`
	Close     string `json:"close" validate:"required"`
}

type updateAvailabilityRequest struct {
	Windows []availabilityWindowRequest `json:"windows" validate:"required,dive"`
}

// Me returns the authenticated barber's own profile.
func Me(svc barbers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		barberID := middleware.BarberIDFromContext(r.Context())
		profile, err := svc.Get(r.Context(), barberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// UpdateMyPrice changes the authenticated barber's haircut price.
func UpdateMyPrice(svc barbers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updatePriceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := parsePrice(req.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		barberID := middleware.BarberIDFromContext(r.Context())
		if err := svc.UpdatePrice(r.Context(), barberID, price); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// AddMyService appends one entry to the authenticated barber's price list.
func AddMyService(svc barbers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addServiceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cost, err := parsePrice(req.Cost)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "cost must be a decimal number"))
			return
		}

		barberID := middleware.BarberIDFromContext(r.Context())
		err = svc.AddService(r.Context(), barberID, barbers.ServiceParams{
			Name:            validators.SanitizeString(req.Name, 120),
			Cost:            cost,
			DurationMinutes: req.DurationMinutes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "added"})
	}
}

// UpdateMyAvailability replaces the authenticated barber's weekly windows.
func UpdateMyAvailability(svc barbers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateAvailabilityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		windows := make([]dbtypes.AvailabilityWindow, 0, len(req.Windows))
		for _, window := range req.Windows {
			windows = append(windows, dbtypes.AvailabilityWindow{
				DayOfWeek: window.DayOfWeek,
				Open:      window.Open,
				Close:     window.Close,
			})
		}

		barberID := middleware.BarberIDFromContext(r.Context())
		if err := svc.UpdateAvailability(r.Context(), barberID, windows); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}
