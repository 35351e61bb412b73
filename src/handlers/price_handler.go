package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/username/sellerledger/backend/src/errors"
	"github.com/username/sellerledger/backend/src/security/validation"
	"github.com/username/sellerledger/backend/src/services"
	"github.com/username/sellerledger/backend/src/utils"
)

// CostPriceRequest sets a cost price. A null cost_price clears it.
type CostPriceRequest struct {
	CostPrice *float64 `json:"cost_price" validate:"omitnil,gte=0"`
}

type CategoryCostPriceRequest struct {
	Name      string   `json:"name" validate:"omitempty,max=100"`
	CostPrice *float64 `json:"cost_price" validate:"omitnil,gte=0"`
}

// AssignCategoryRequest links a product to a category. A null category_id unlinks it.
type AssignCategoryRequest struct {
	CategoryID *string `json:"category_id" validate:"omitnil,min=1,max=100"`
}

type PriceHandler struct {
	summaryService services.SummaryService
}

func NewPriceHandler(service services.SummaryService) *PriceHandler {
	return &PriceHandler{summaryService: service}
}

func (h *PriceHandler) HandleSetProductCostPrice(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	sku := strings.TrimSpace(r.PathValue("sku"))
	var req CostPriceRequest
	if !decodeRequest(w, r, &req, userID) || !requirePathValue(w, sku, "sku", userID) {
		return
	}

	if err := h.summaryService.SetProductCostPrice(r.Context(), userID, sku, req.CostPrice); err != nil {
		sendServiceError(w, err, userID, "update the cost price")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PriceHandler) HandleSetCategoryCostPrice(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	categoryID := strings.TrimSpace(r.PathValue("id"))
	var req CategoryCostPriceRequest
	if !decodeRequest(w, r, &req, userID) || !requirePathValue(w, categoryID, "category id", userID) {
		return
	}

	if err := h.summaryService.SetCategoryCostPrice(r.Context(), userID, categoryID, req.Name, req.CostPrice); err != nil {
		sendServiceError(w, err, userID, "update the category cost price")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PriceHandler) HandleAssignCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	sku := strings.TrimSpace(r.PathValue("sku"))
	var req AssignCategoryRequest
	if !decodeRequest(w, r, &req, userID) || !requirePathValue(w, sku, "sku", userID) {
		return
	}

	if err := h.summaryService.AssignCategory(r.Context(), userID, sku, req.CategoryID); err != nil {
		sendServiceError(w, err, userID, "assign the category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}, userID int64) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendServiceError(w, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid JSON body"), userID, "read the request")
		return false
	}
	if err := validation.ValidateStruct(dst); err != nil {
		sendServiceError(w, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()), userID, "read the request")
		return false
	}
	return true
}

func requirePathValue(w http.ResponseWriter, value, name string, userID int64) bool {
	if value == "" {
		sendServiceError(w, apperrors.WithMessage(apperrors.ErrInvalidInput, name+" is required"), userID, "read the request")
		return false
	}
	return true
}
