package handlers

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/username/sellerledger/backend/src/errors"
	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/parsers"
	"github.com/username/sellerledger/backend/src/security/validation"
	"github.com/username/sellerledger/backend/src/services"
	"github.com/username/sellerledger/backend/src/utils"
)

type UploadHandler struct {
	uploadService  services.UploadService
	maxUploadBytes int64
}

func NewUploadHandler(service services.UploadService, maxUploadBytes int64) *UploadHandler {
	return &UploadHandler{
		uploadService:  service,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.L.Warn("Upload too large", "userID", userID, "limit", h.maxUploadBytes)
			utils.SendJSONError(w, fmt.Sprintf("File too large (max %s)", formatByteLimit(h.maxUploadBytes)), http.StatusRequestEntityTooLarge)
			return
		}
		logger.L.Warn("Failed to parse multipart form", "userID", userID, "error", err)
		sendServiceError(w, apperrors.ErrNoFileSelected, userID, "process the upload")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "userID", userID, "error", err)
		sendServiceError(w, apperrors.ErrNoFileSelected, userID, "process the upload")
		return
	}
	defer file.Close()

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		sendServiceError(w, apperrors.WithMessage(apperrors.ErrUnsupportedFileType, err.Error()), userID, "process the upload")
		return
	}

	upload, err := parsers.ReadUpload(fileHeader.Filename, file)
	if err != nil {
		sendServiceError(w, err, userID, "process the upload")
		return
	}

	upload.Source = r.FormValue("source")

	logger.L.Info("Processing upload request", "userID", userID, "filename", fileHeader.Filename, "size", len(upload.Content))
	result, err := h.uploadService.ProcessUpload(r.Context(), userID, upload)
	if err != nil {
		sendServiceError(w, err, userID, "process the upload")
		return
	}

	utils.SendJSON(w, result, http.StatusOK)
}

// formatByteLimit renders n in the largest unit that divides it exactly.
func formatByteLimit(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
