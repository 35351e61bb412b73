package handlers

import (
	"net/http"

	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/services"
	"github.com/username/sellerledger/backend/src/utils"
)

type SummaryHandler struct {
	summaryService services.SummaryService
}

func NewSummaryHandler(service services.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: service}
}

func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	logger.L.Debug("Handling GetSummary request with ETag support", "userID", userID)

	summary, err := h.summaryService.GetSummary(r.Context(), userID)
	if err != nil {
		sendServiceError(w, err, userID, "compute the summary")
		return
	}
	writeWithETag(w, r, summary, userID)
}
