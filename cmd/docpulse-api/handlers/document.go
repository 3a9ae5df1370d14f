// Package handlers provides HTTP handlers for the docpulse API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/docpulse/docpulse/internal/detect"
	"github.com/docpulse/docpulse/internal/observability"
	"github.com/docpulse/docpulse/internal/pdf"
	"github.com/docpulse/docpulse/internal/session"
)

// JobScheduler schedules the analysis run for an uploaded document and owns
// the session record for the run.
type JobScheduler interface {
	Start(ctx context.Context, clientID, path, filename string) (*detect.Task, error)
}

// DocumentHandler handles document upload and status requests.
type DocumentHandler struct {
	logger    *observability.Logger
	store     *session.Store
	scheduler JobScheduler
	uploadDir string
	maxBytes  int64
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(logger *observability.Logger, store *session.Store,
	scheduler JobScheduler, uploadDir string, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{
		logger:    logger,
		store:     store,
		scheduler: scheduler,
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
	}
}

// UploadResponseDTO is the immediate response to a successful upload.
type UploadResponseDTO struct {
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
	Filename string `json:"filename"`
}

// Upload handles POST /api/upload-document. It persists the file, schedules
// the analysis job, and returns without waiting for analysis.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form", nil)
		return
	}

	clientID := r.FormValue("client_id")
	if clientID == "" {
		h.writeError(w, http.StatusBadRequest, "client_id is required", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "file is required", nil)
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	h.logger.Info().
		Str("client_id", clientID).
		Str("filename", filename).
		Msg("file upload received")

	if err := pdf.ValidateExtension(filename); err != nil {
		h.logger.Warn().Str("client_id", clientID).Str("filename", filename).
			Msg("unsupported file type rejected")
		h.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":           err.Error(),
			"supported_types": pdf.AllowedExtensions(),
		})
		return
	}

	destPath := filepath.Join(h.uploadDir, clientID+"_"+filename)
	dest, err := os.Create(destPath)
	if err != nil {
		h.logger.Error().Err(err).Str("path", destPath).Msg("failed to create upload file")
		h.writeError(w, http.StatusInternalServerError, "failed to store file", nil)
		return
	}

	size, err := io.Copy(dest, file)
	dest.Close()
	if err != nil {
		os.Remove(destPath)
		h.logger.Error().Err(err).Str("path", destPath).Msg("failed to write upload file")
		h.writeError(w, http.StatusInternalServerError, "failed to store file", nil)
		return
	}

	h.logger.Info().
		Str("client_id", clientID).
		Int64("size", size).
		Str("path", destPath).
		Msg("file saved")

	// The job outlives this request; detach it from the request lifecycle.
	// The scheduler creates the session record, so a rejected duplicate
	// leaves the in-flight run's session intact.
	if _, err := h.scheduler.Start(context.WithoutCancel(r.Context()), clientID, destPath, filename); err != nil {
		if errors.Is(err, detect.ErrJobActive) {
			h.writeError(w, http.StatusConflict, "analysis already running for this client", nil)
			return
		}
		h.logger.Error().Err(err).Str("client_id", clientID).Msg("failed to schedule analysis")
		h.writeError(w, http.StatusInternalServerError, "failed to schedule analysis", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, UploadResponseDTO{
		ClientID: clientID,
		Status:   "uploaded",
		Filename: filename,
	})
}

// Status handles GET /api/detection-status/{clientID}.
func (h *DocumentHandler) Status(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")

	sess, ok := h.store.Get(clientID)
	if !ok {
		h.logger.Warn().Str("client_id", clientID).Msg("status request for unknown client")
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Client ID not found"})
		return
	}

	h.writeJSON(w, http.StatusOK, sess)
}

func (h *DocumentHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *DocumentHandler) writeError(w http.ResponseWriter, status int, message string, details any) {
	body := map[string]any{"error": message}
	if details != nil {
		body["details"] = details
	}
	h.writeJSON(w, status, body)
}
