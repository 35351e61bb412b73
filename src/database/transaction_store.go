package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/username/sellerledger/backend/src/models"
)

// transactionRow is the flattened storage shape of models.Transaction.
type transactionRow struct {
	UserID         int64   `db:"user_id"`
	ImportID       string  `db:"import_id"`
	Hash           string  `db:"hash"`
	TransactionID  string  `db:"transaction_id"`
	Platform       string  `db:"platform"`
	OrderDate      string  `db:"order_date"`
	SKU            string  `db:"sku"`
	Description    string  `db:"description"`
	Quantity       int     `db:"quantity"`
	SellingPrice   float64 `db:"selling_price"`
	Total          float64 `db:"total"`
	AccNetSales    float64 `db:"acc_net_sales"`
	Type           string  `db:"type"`
	OrderStatus    string  `db:"order_status"`
	ShippingFee    float64 `db:"shipping_fee"`
	MarketplaceFee float64 `db:"marketplace_fee"`
	OtherFees      float64 `db:"other_fees"`
	CreatedAt      string  `db:"created_at"`
	UpdatedAt      string  `db:"updated_at"`
}

func toTransactionRow(userID int64, tx models.Transaction) transactionRow {
	return transactionRow{
		UserID:         userID,
		ImportID:       tx.ImportID,
		Hash:           tx.Hash,
		TransactionID:  tx.TransactionID,
		Platform:       string(tx.Platform),
		OrderDate:      tx.OrderDate,
		SKU:            tx.SKU,
		Description:    tx.Description,
		Quantity:       tx.Quantity,
		SellingPrice:   tx.SellingPrice,
		Total:          tx.Total,
		AccNetSales:    tx.AccNetSales,
		Type:           tx.Type,
		OrderStatus:    tx.OrderStatus,
		ShippingFee:    tx.Expenses.ShippingFee,
		MarketplaceFee: tx.Expenses.MarketplaceFee,
		OtherFees:      tx.Expenses.OtherFees,
		CreatedAt:      formatTime(tx.Metadata.CreatedAt),
		UpdatedAt:      formatTime(tx.Metadata.UpdatedAt),
	}
}

func (r transactionRow) toModel() models.Transaction {
	return models.Transaction{
		TransactionID: r.TransactionID,
		Platform:      models.Platform(r.Platform),
		OrderDate:     r.OrderDate,
		SKU:           r.SKU,
		Description:   r.Description,
		Quantity:      r.Quantity,
		SellingPrice:  r.SellingPrice,
		Total:         r.Total,
		AccNetSales:   r.AccNetSales,
		Type:          r.Type,
		OrderStatus:   r.OrderStatus,
		Expenses: models.Expenses{
			ShippingFee:    r.ShippingFee,
			MarketplaceFee: r.MarketplaceFee,
			OtherFees:      r.OtherFees,
		},
		Product:  models.ProductRef{SKU: r.SKU, Description: r.Description},
		Metadata: models.Metadata{CreatedAt: parseTime(r.CreatedAt), UpdatedAt: parseTime(r.UpdatedAt)},
		Hash:     r.Hash,
		ImportID: r.ImportID,
	}
}

const transactionColumns = `user_id, import_id, hash, transaction_id, platform, order_date, sku, description,
	quantity, selling_price, total, acc_net_sales, type, order_status,
	shipping_fee, marketplace_fee, other_fees, created_at, updated_at`

type TransactionStore struct {
	DB *sqlx.DB
}

func NewTransactionStore(db *sqlx.DB) *TransactionStore {
	return &TransactionStore{DB: db}
}

// ExistingHashes returns the subset of hashes already stored for userID.
func (s *TransactionStore) ExistingHashes(ctx context.Context, userID int64, hashes []string) ([]string, error) {
	if len(hashes) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT hash FROM transactions WHERE user_id = ? AND hash IN (?)`, userID, hashes)
	if err != nil {
		return nil, fmt.Errorf("building hash lookup: %w", err)
	}
	var existing []string
	if err := s.DB.SelectContext(ctx, &existing, s.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("looking up existing hashes: %w", err)
	}
	return existing, nil
}

// insertTransactions writes txs inside dbTx. A row whose hash is already
// stored for the user is left untouched, so concurrent imports of the same
// file cannot double-insert. It returns the number of rows written.
func insertTransactions(ctx context.Context, dbTx *sqlx.Tx, userID int64, txs []models.Transaction) (int, error) {
	stmt, err := dbTx.PrepareNamedContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (:user_id, :import_id, :hash, :transaction_id, :platform, :order_date, :sku, :description,
			:quantity, :selling_price, :total, :acc_net_sales, :type, :order_status,
			:shipping_fee, :marketplace_fee, :other_fees, :created_at, :updated_at)
		ON CONFLICT(user_id, hash) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, tx := range txs {
		res, err := stmt.ExecContext(ctx, toTransactionRow(userID, tx))
		if err != nil {
			return 0, fmt.Errorf("inserting transaction %s: %w", tx.TransactionID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("reading insert result: %w", err)
		}
		inserted += int(n)
	}
	return inserted, nil
}

// ListByUser returns every stored transaction for userID in insertion order.
func (s *TransactionStore) ListByUser(ctx context.Context, userID int64) ([]models.Transaction, error) {
	var rows []transactionRow
	err := s.DB.SelectContext(ctx, &rows,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	txs := make([]models.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, r.toModel())
	}
	return txs, nil
}

// DeleteAll removes every transaction and import record of userID.
func (s *TransactionStore) DeleteAll(ctx context.Context, userID int64) (int, error) {
	dbTx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning delete: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting transactions: %w", err)
	}
	if _, err := dbTx.ExecContext(ctx, `DELETE FROM imports WHERE user_id = ?`, userID); err != nil {
		return 0, fmt.Errorf("deleting import records: %w", err)
	}
	n, _ := res.RowsAffected()
	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("committing delete: %w", err)
	}
	return int(n), nil
}
