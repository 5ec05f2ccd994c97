package controllers

import (
	"net/http"

	"github.com/marcoberry/barberhub-backend/api/responses"
	"github.com/marcoberry/barberhub-backend/api/validators"
	"github.com/marcoberry/barberhub-backend/internal/barbers"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
)

type signupRequest struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Phone    string  `json:"phone" validate:"required,max=32"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Price    string  `json:"price" validate:"required"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

type loginRequest struct {
	Phone    string `json:"phone" validate:"required,max=32"`
	Password string `json:"password" validate:"required,max=128"`
}

// AuthSignup registers a barber and starts the free trial.
func AuthSignup(svc barbers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := parsePrice(req.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Signup(r.Context(), barbers.SignupParams{
			Name:     req.Name,
			Phone:    req.Phone,
			Password: req.Password,
			Price:    price,
			Lat:      req.Lat,
			Lng:      req.Lng,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AuthLogin exchanges phone credentials for a token and a fresh profile.
func AuthLogin(svc barbers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), barbers.LoginParams{
			Phone:    req.Phone,
			Password: req.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
