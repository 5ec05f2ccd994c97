package controllers

import (
	"net/http"

	"github.com/marcoberry/barberhub-backend/api/middleware"
	"github.com/marcoberry/barberhub-backend/api/responses"
	"github.com/marcoberry/barberhub-backend/api/validators"
	"github.com/marcoberry/barberhub-backend/internal/media"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
)

type uploadMediaRequest struct {
	ImageData string `json:"image_data" validate:"required"`
}

// ListMyMedia returns the authenticated barber's gallery.
func ListMyMedia(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		barberID := middleware.BarberIDFromContext(r.Context())
		rows, err := svc.List(r.Context(), barberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// UploadMyMedia adds one image to the gallery, subject to the cap.
func UploadMyMedia(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req uploadMediaRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		barberID := middleware.BarberIDFromContext(r.Context())
		uploaded, err := svc.Upload(r.Context(), barberID, req.ImageData)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, uploaded)
	}
}

// DeleteMyMedia removes one gallery image.
func DeleteMyMedia(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaID, err := uuidParam(r, "mediaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		barberID := middleware.BarberIDFromContext(r.Context())
		if err := svc.Delete(r.Context(), barberID, mediaID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
