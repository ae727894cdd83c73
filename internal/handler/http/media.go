package http

import (
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/giovannicg/INMEDT/internal/service"
	"github.com/giovannicg/INMEDT/pkg/httputil"
)

// maxUploadBytes caps an uploaded image file at 5 MiB.
const maxUploadBytes = 5 << 20

// MediaHandler handles HTTP requests for product image endpoints.
type MediaHandler struct {
	service *service.MediaService
	logger  *slog.Logger
}

// NewMediaHandler creates a new media HTTP handler.
func NewMediaHandler(svc *service.MediaService, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{service: svc, logger: logger}
}

// SetMainImage handles POST /api/v1/admin/products/{id}/image (multipart/form-data).
func (h *MediaHandler) SetMainImage(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	file, header, ok := formImage(w, r)
	if !ok {
		return
	}
	defer file.Close()

	mainKey, thumbKey, err := h.service.SetMainImage(r.Context(), productID.String(), service.UploadImageInput{
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: map[string]string{"image": mainKey, "thumbnail": thumbKey},
	})
}

// AddGalleryImage handles POST /api/v1/admin/products/{id}/gallery (multipart/form-data).
func (h *MediaHandler) AddGalleryImage(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	file, header, ok := formImage(w, r)
	if !ok {
		return
	}
	defer file.Close()

	key, err := h.service.AddGalleryImage(r.Context(), productID.String(), service.UploadImageInput{
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: map[string]string{"image": key}})
}

// RemoveGalleryImage handles DELETE /api/v1/admin/products/{id}/gallery/{key}
func (h *MediaHandler) RemoveGalleryImage(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	key := chi.URLParam(r, "key")
	if key == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "image key is required"},
		})
		return
	}

	if err := h.service.RemoveGalleryImage(r.Context(), productID.String(), key); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"image": key, "status": "removed"}})
}

// formImage parses the multipart form and returns the "file" part. It writes
// the error response and returns false when the upload is missing or the form
// cannot be parsed.
func formImage(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	// 1MB of headroom for the form fields around the file part.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+(1<<20))

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "failed to parse multipart form: " + err.Error()},
		})
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "file is required: " + err.Error()},
		})
		return nil, nil, false
	}

	return file, header, true
}
