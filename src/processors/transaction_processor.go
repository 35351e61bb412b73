package processors

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/utils"
)

type TransactionProcessor struct {
	now func() time.Time
}

func NewTransactionProcessor() *TransactionProcessor {
	return &TransactionProcessor{now: time.Now}
}

// Process normalizes parsed transactions and stamps them for persistence.
// The input slice is not modified.
func (p *TransactionProcessor) Process(txs []models.Transaction, importID string) []models.Transaction {
	stamp := p.now().UTC()
	processed := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		// 1. Normalize labels and identifiers.
		tx.Type = strings.ToLower(strings.TrimSpace(tx.Type))
		tx.OrderStatus = strings.ToLower(strings.TrimSpace(tx.OrderStatus))
		tx.SKU = strings.TrimSpace(tx.SKU)
		tx.TransactionID = strings.TrimSpace(tx.TransactionID)
		tx.Product.SKU = tx.SKU
		if tx.Product.Description == "" {
			tx.Product.Description = tx.Description
		}

		// 2. Counts and fee magnitudes are never negative.
		tx.Quantity = utils.AbsInt(tx.Quantity)
		tx.Expenses = magnitudes(tx.Expenses)
		tx.Product.CostPrice = 0

		// 3. Ingestion metadata.
		tx.Metadata = models.Metadata{CreatedAt: stamp, UpdatedAt: stamp}
		tx.ImportID = importID

		// 4. Content hash used for deduplication.
		tx.Hash = GenerateHash(tx)

		processed = append(processed, tx)
	}
	return processed
}

// GenerateHash derives the dedup key from the fields that identify a report
// row. Importing the same file twice yields the same hashes.
func GenerateHash(tx models.Transaction) string {
	input := strings.Join([]string{
		string(tx.Platform),
		tx.TransactionID,
		tx.SKU,
		tx.Label(),
		tx.OrderDate,
	}, "|")
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

func magnitudes(e models.Expenses) models.Expenses {
	return models.Expenses{
		ShippingFee:    abs(e.ShippingFee),
		MarketplaceFee: abs(e.MarketplaceFee),
		OtherFees:      abs(e.OtherFees),
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
