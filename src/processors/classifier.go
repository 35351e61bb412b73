package processors

import (
	"strings"

	"github.com/username/sellerledger/backend/src/models"
)

type Classification string

const (
	ClassSale    Classification = "sale"
	ClassExpense Classification = "expense"
	ClassIgnore  Classification = "ignore"
)

var flipkartSaleStatuses = map[string]bool{
	"delivered":  true,
	"shipped":    true,
	"in transit": true,
}

var amazonExpenseKeywords = []string{"refund", "service", "fee"}

var amazonExpenseTypes = map[string]bool{
	"adjustment":        true,
	"shipping services": true,
}

// Classify decides whether a transaction counts as a sale, an expense or
// neither. Flipkart has no ignore bucket: every non-sale status is an expense.
func Classify(tx models.Transaction) Classification {
	label := normalizeLabel(tx.Label())
	if label == "" {
		return ClassIgnore
	}

	switch tx.Platform {
	case models.PlatformAmazon:
		if label == "order" {
			return ClassSale
		}
		if amazonExpenseTypes[label] {
			return ClassExpense
		}
		for _, kw := range amazonExpenseKeywords {
			if strings.Contains(label, kw) {
				return ClassExpense
			}
		}
		return ClassIgnore
	case models.PlatformFlipkart:
		if flipkartSaleStatuses[label] {
			return ClassSale
		}
		return ClassExpense
	default:
		return ClassIgnore
	}
}

// ExpenseCategory is the expensesByCategory key for an expense transaction.
func ExpenseCategory(tx models.Transaction) string {
	label := normalizeLabel(tx.Label())
	if tx.Platform == models.PlatformFlipkart {
		return "flipkart-" + label
	}
	return label
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " ")
}
