package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/security/validation"
	"github.com/username/sellerledger/backend/src/services"
	"github.com/username/sellerledger/backend/src/utils"
)

var exportHeader = []string{
	"transaction_id", "platform", "order_date", "sku", "description", "quantity",
	"selling_price", "total", "acc_net_sales", "type", "order_status",
	"shipping_fee", "marketplace_fee", "other_fees", "cost_price", "import_id",
}

type TransactionHandler struct {
	summaryService services.SummaryService
	uploadService  services.UploadService
}

func NewTransactionHandler(summaryService services.SummaryService, uploadService services.UploadService) *TransactionHandler {
	return &TransactionHandler{summaryService: summaryService, uploadService: uploadService}
}

// HandleGetTransactions lists the user's transactions as JSON, or as a CSV
// download with ?format=csv.
func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	txs, err := h.summaryService.ListTransactions(r.Context(), userID)
	if err != nil {
		sendServiceError(w, err, userID, "list transactions")
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	if r.URL.Query().Get("format") == "csv" {
		writeTransactionsCSV(w, txs, userID)
		return
	}
	utils.SendJSON(w, txs, http.StatusOK)
}

func (h *TransactionHandler) HandleDeleteAllTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	removed, err := h.uploadService.DeleteAllTransactions(r.Context(), userID)
	if err != nil {
		sendServiceError(w, err, userID, "delete transactions")
		return
	}
	utils.SendJSON(w, map[string]int{"rows_removed": removed}, http.StatusOK)
}

func writeTransactionsCSV(w http.ResponseWriter, txs []models.Transaction, userID int64) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		logger.L.Error("Error writing CSV export header", "userID", userID, "error", err)
		return
	}
	for _, tx := range txs {
		// Report text comes from third parties and ends up in spreadsheets.
		text := validation.SanitizeForFormulaInjection
		record := []string{
			text(tx.TransactionID),
			string(tx.Platform),
			tx.OrderDate,
			text(tx.SKU),
			text(tx.Description),
			strconv.Itoa(tx.Quantity),
			formatAmount(tx.SellingPrice),
			formatAmount(tx.Total),
			formatAmount(tx.AccNetSales),
			text(tx.Type),
			text(tx.OrderStatus),
			formatAmount(tx.Expenses.ShippingFee),
			formatAmount(tx.Expenses.MarketplaceFee),
			formatAmount(tx.Expenses.OtherFees),
			formatAmount(tx.Product.CostPrice),
			tx.ImportID,
		}
		if err := cw.Write(record); err != nil {
			logger.L.Error("Error writing CSV export row", "userID", userID, "error", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.L.Error("Error flushing CSV export", "userID", userID, "error", err)
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(utils.RoundFloat(v, 2), 'f', 2, 64)
}
