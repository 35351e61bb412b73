package processors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/utils"
)

// DefaultPriceTable is the static last-resort SKU -> cost price table.
type DefaultPriceTable map[string]float64

// Lookup matches the SKU exactly, then case-insensitively.
func (t DefaultPriceTable) Lookup(sku string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	if price, ok := t[sku]; ok {
		return price, true
	}
	for k, price := range t {
		if strings.EqualFold(k, sku) {
			return price, true
		}
	}
	return 0, false
}

// LoadDefaultPriceTable reads a JSON array of {sku, cost_price, ...} rows.
// A missing file is not an error: the table is simply empty.
func LoadDefaultPriceTable(filePath string) (DefaultPriceTable, error) {
	logger.L.Info("Loading default cost price table", "path", filePath)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.L.Warn("Default cost price table not found, continuing without it", "path", filePath)
			return DefaultPriceTable{}, nil
		}
		return nil, fmt.Errorf("error reading default cost price table '%s': %w", filePath, err)
	}

	var rows []struct {
		SKU       string `json:"sku"`
		CostPrice any    `json:"cost_price"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("error unmarshalling default cost price table from '%s': %w", filePath, err)
	}

	table := make(DefaultPriceTable, len(rows))
	for _, row := range rows {
		sku := strings.TrimSpace(row.SKU)
		if sku == "" {
			continue
		}
		table[sku] = utils.ParseCurrency(row.CostPrice)
	}
	logger.L.Info("Default cost price table loaded", "path", filePath, "skuCount", len(table))
	return table, nil
}

