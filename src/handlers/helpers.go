package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/username/sellerledger/backend/src/errors"
	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/utils"
)

type contextKey string

const userIDContextKey contextKey = "userID"

// GetUserIDFromContext retrieves the userID stored by AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}

// WithUserID stores userID the way AuthMiddleware does.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// sendServiceError maps a service error to a response. AppErrors carry their
// own status; anything else is a storage or runtime failure and is reported as
// unavailable without leaking details.
func sendServiceError(w http.ResponseWriter, err error, userID int64, action string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		logger.L.Warn("Request rejected", "action", action, "userID", userID, "code", appErr.Code, "error", err)
		utils.SendJSON(w, map[string]string{"error": appErr.Message, "code": appErr.Code}, appErr.StatusCode)
		return
	}
	logger.L.Error("Request failed", "action", action, "userID", userID, "error", err)
	utils.SendJSONError(w, fmt.Sprintf("Could not %s right now. Please try again later.", action), http.StatusServiceUnavailable)
}

// writeWithETag sends data with an ETag and answers 304 when the client
// already holds the same representation.
func writeWithETag(w http.ResponseWriter, r *http.Request, data interface{}, userID int64) {
	currentETag, etagErr := utils.GenerateETag(data)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag", "userID", userID, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		clientETag := r.Header.Get("If-None-Match")
		for _, cETag := range strings.Split(clientETag, ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				logger.L.Debug("ETag match", "userID", userID, "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	utils.SendJSON(w, data, http.StatusOK)
}
