package processors

import (
	"testing"
	"time"

	"github.com/username/sellerledger/backend/src/models"
)

func TestTransactionProcessorProcess(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := &TransactionProcessor{now: func() time.Time { return fixed }}

	raw := []models.Transaction{{
		TransactionID: " 402-1 ",
		Platform:      models.PlatformAmazon,
		OrderDate:     "2024-04-01T10:15:00Z",
		SKU:           " MUG-01 ",
		Description:   "Mug",
		Quantity:      -2,
		Type:          " Order ",
		OrderStatus:   "ORDER",
		Expenses:      models.Expenses{MarketplaceFee: -10, OtherFees: 3},
		Product:       models.ProductRef{CostPrice: 99},
	}}

	out := p.Process(raw, "import-1")
	if len(out) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(out))
	}
	tx := out[0]

	if tx.Type != "order" || tx.OrderStatus != "order" {
		t.Errorf("expected lower-cased labels, got %q/%q", tx.Type, tx.OrderStatus)
	}
	if tx.SKU != "MUG-01" || tx.Product.SKU != "MUG-01" || tx.TransactionID != "402-1" {
		t.Errorf("expected trimmed identifiers, got %+v", tx)
	}
	if tx.Quantity != 2 || tx.Expenses.MarketplaceFee != 10 {
		t.Errorf("expected magnitudes, got qty %d fee %v", tx.Quantity, tx.Expenses.MarketplaceFee)
	}
	if tx.Product.CostPrice != 0 {
		t.Errorf("expected stored cost price 0, got %v", tx.Product.CostPrice)
	}
	if tx.Product.Description != "Mug" {
		t.Errorf("expected product description copied, got %q", tx.Product.Description)
	}
	if !tx.Metadata.CreatedAt.Equal(fixed) || !tx.Metadata.UpdatedAt.Equal(fixed) {
		t.Errorf("expected metadata stamped with %v, got %+v", fixed, tx.Metadata)
	}
	if tx.ImportID != "import-1" {
		t.Errorf("expected import id, got %q", tx.ImportID)
	}
	if tx.Hash == "" || len(tx.Hash) != 64 {
		t.Errorf("expected sha256 hex hash, got %q", tx.Hash)
	}
	if raw[0].Quantity != -2 {
		t.Error("input slice must not be modified")
	}
}

func TestGenerateHash(t *testing.T) {
	base := models.Transaction{
		TransactionID: "OD1",
		Platform:      models.PlatformFlipkart,
		OrderDate:     "2024-04-03T00:00:00Z",
		SKU:           "TEE-RED",
		Type:          "delivered",
		OrderStatus:   "delivered",
		Total:         900,
	}

	t.Run("deterministic_across_runs", func(t *testing.T) {
		p1 := NewTransactionProcessor().Process([]models.Transaction{base}, "a")
		p2 := NewTransactionProcessor().Process([]models.Transaction{base}, "b")
		if p1[0].Hash != p2[0].Hash {
			t.Error("same row in two imports must hash identically")
		}
	})

	t.Run("amounts_do_not_change_identity", func(t *testing.T) {
		changed := base
		changed.Total = 1
		if GenerateHash(base) != GenerateHash(changed) {
			t.Error("hash must depend only on identifying fields")
		}
	})

	t.Run("identifying_fields_change_hash", func(t *testing.T) {
		variants := map[string]func(*models.Transaction){
			"transaction id": func(tx *models.Transaction) { tx.TransactionID = "OD2" },
			"platform":       func(tx *models.Transaction) { tx.Platform = models.PlatformAmazon },
			"sku":            func(tx *models.Transaction) { tx.SKU = "TEE-BLUE" },
			"label":          func(tx *models.Transaction) { tx.Type, tx.OrderStatus = "returned", "returned" },
			"date":           func(tx *models.Transaction) { tx.OrderDate = "2024-04-04T00:00:00Z" },
		}
		for name, mutate := range variants {
			changed := base
			mutate(&changed)
			if GenerateHash(base) == GenerateHash(changed) {
				t.Errorf("changing %s must change the hash", name)
			}
		}
	})
}
