package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"webstore/go-backend/internal/auth"
)

const maxUploadSize = 5 << 20 // 5 MiB

// UploadHandler stores product images on local disk and serves them back
// under /uploads/.
type UploadHandler struct {
	*Handler
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(base *Handler) *UploadHandler {
	return &UploadHandler{Handler: base}
}

// RegisterRoutes mounts the upload routes on the router.
func (h *UploadHandler) RegisterRoutes(r chi.Router) {
	r.With(auth.Authenticate(h.cfg.JWTSecret)).Post("/api/uploads", h.Upload)

	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.cfg.UploadDir)))
	r.Get("/uploads/*", fs.ServeHTTP)
}

// Upload accepts one multipart image and returns its public URL.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		Error(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		Error(w, http.StatusBadRequest, "unsupported image type")
		return
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0755); err != nil {
		slog.Error("Failed to create upload directory", "error", err)
		Error(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.cfg.UploadDir, name))
	if err != nil {
		slog.Error("Failed to create upload file", "error", err)
		Error(w, http.StatusInternalServerError, "failed to store image")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		slog.Error("Failed to write upload file", "error", err)
		Error(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	// The frontend expects the bare URL as the response body, not a JSON
	// wrapper around it.
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s://%s/uploads/%s", scheme, r.Host, name)
}
