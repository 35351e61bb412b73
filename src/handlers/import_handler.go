package handlers

import (
	"net/http"

	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/services"
	"github.com/username/sellerledger/backend/src/utils"
)

type ImportHandler struct {
	uploadService services.UploadService
}

func NewImportHandler(service services.UploadService) *ImportHandler {
	return &ImportHandler{uploadService: service}
}

func (h *ImportHandler) HandleListImports(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	imports, err := h.uploadService.ListImports(r.Context(), userID)
	if err != nil {
		sendServiceError(w, err, userID, "list imports")
		return
	}
	if imports == nil {
		imports = []models.ImportRecord{}
	}
	utils.SendJSON(w, imports, http.StatusOK)
}

func (h *ImportHandler) HandleGetImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	rec, err := h.uploadService.GetImport(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		sendServiceError(w, err, userID, "load the import")
		return
	}
	utils.SendJSON(w, rec, http.StatusOK)
}

// HandleRollbackImport deletes the rows inserted by the import in the path.
func (h *ImportHandler) HandleRollbackImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	importID := r.PathValue("id")
	removed, err := h.uploadService.RollbackImport(r.Context(), userID, importID)
	if err != nil {
		sendServiceError(w, err, userID, "roll back the import")
		return
	}
	utils.SendJSON(w, map[string]interface{}{"import_id": importID, "rows_removed": removed}, http.StatusOK)
}
