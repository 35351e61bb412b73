package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/username/sellerledger/backend/src/errors"
	"github.com/username/sellerledger/backend/src/models"
)

type productRow struct {
	UserID          int64           `db:"user_id"`
	SKU             string          `db:"sku"`
	Description     string          `db:"description"`
	CategoryID      sql.NullString  `db:"category_id"`
	CustomCostPrice sql.NullFloat64 `db:"custom_cost_price"`
	BasePrice       float64         `db:"base_price"`
	UpdatedAt       string          `db:"updated_at"`
}

func (r productRow) toModel() models.Product {
	p := models.Product{
		SKU:         r.SKU,
		Description: r.Description,
		BasePrice:   r.BasePrice,
		UpdatedAt:   parseTime(r.UpdatedAt),
	}
	if r.CategoryID.Valid {
		id := r.CategoryID.String
		p.CategoryID = &id
	}
	if r.CustomCostPrice.Valid {
		price := r.CustomCostPrice.Float64
		p.CustomCostPrice = &price
	}
	return p
}

type categoryRow struct {
	UserID    int64           `db:"user_id"`
	ID        string          `db:"id"`
	Name      string          `db:"name"`
	CostPrice sql.NullFloat64 `db:"cost_price"`
	UpdatedAt string          `db:"updated_at"`
}

func (r categoryRow) toModel() models.Category {
	c := models.Category{ID: r.ID, Name: r.Name, UpdatedAt: parseTime(r.UpdatedAt)}
	if r.CostPrice.Valid {
		price := r.CostPrice.Float64
		c.CostPrice = &price
	}
	return c
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// ProductStore holds the seller's catalogue: per-product cost prices and
// category averages.
type ProductStore struct {
	DB  *sqlx.DB
	now func() time.Time
}

func NewProductStore(db *sqlx.DB) *ProductStore {
	return &ProductStore{DB: db, now: time.Now}
}

func (s *ProductStore) GetProducts(ctx context.Context, userID int64) ([]models.Product, error) {
	var rows []productRow
	if err := s.DB.SelectContext(ctx, &rows, `SELECT * FROM products WHERE user_id = ? ORDER BY sku`, userID); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	out := make([]models.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *ProductStore) GetCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	var rows []categoryRow
	if err := s.DB.SelectContext(ctx, &rows, `SELECT * FROM categories WHERE user_id = ? ORDER BY id`, userID); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	out := make([]models.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// UpsertPriceList merges an uploaded price list into the catalogue. A
// non-positive cost price keeps whatever custom price is already stored.
func (s *ProductStore) UpsertPriceList(ctx context.Context, userID int64, prices []models.ProductPrice) (int, error) {
	if len(prices) == 0 {
		return 0, nil
	}
	dbTx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning price list upsert: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareNamedContext(ctx, `
		INSERT INTO products (user_id, sku, description, category_id, custom_cost_price, base_price, updated_at)
		VALUES (:user_id, :sku, :description, NULL, :custom_cost_price, :base_price, :updated_at)
		ON CONFLICT(user_id, sku) DO UPDATE SET
			description = CASE WHEN excluded.description <> '' THEN excluded.description ELSE products.description END,
			base_price = excluded.base_price,
			custom_cost_price = COALESCE(excluded.custom_cost_price, products.custom_cost_price),
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("preparing price list upsert: %w", err)
	}
	defer stmt.Close()

	stamp := formatTime(s.now())
	for _, p := range prices {
		row := productRow{
			UserID:      userID,
			SKU:         p.SKU,
			Description: p.Description,
			BasePrice:   p.BasePrice,
			UpdatedAt:   stamp,
		}
		if p.CostPrice > 0 {
			row.CustomCostPrice = sql.NullFloat64{Float64: p.CostPrice, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return 0, fmt.Errorf("upserting price for %s: %w", p.SKU, err)
		}
	}
	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("committing price list upsert: %w", err)
	}
	return len(prices), nil
}

// SetProductCostPrice sets or, with a nil price, clears the custom cost price
// of sku. Unknown SKUs are added to the catalogue.
func (s *ProductStore) SetProductCostPrice(ctx context.Context, userID int64, sku string, price *float64) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO products (user_id, sku, custom_cost_price, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, sku) DO UPDATE SET
			custom_cost_price = excluded.custom_cost_price,
			updated_at = excluded.updated_at`,
		userID, sku, nullFloat(price), formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("setting cost price for %s: %w", sku, err)
	}
	return nil
}

// SetCategoryCostPrice sets or clears the average cost price of a category,
// creating the category when it does not exist yet.
func (s *ProductStore) SetCategoryCostPrice(ctx context.Context, userID int64, categoryID, name string, price *float64) error {
	if name == "" {
		name = categoryID
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO categories (user_id, id, name, cost_price, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			cost_price = excluded.cost_price,
			updated_at = excluded.updated_at`,
		userID, categoryID, name, nullFloat(price), formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("setting cost price for category %s: %w", categoryID, err)
	}
	return nil
}

// AssignCategory links sku to an existing category, or unlinks it when
// categoryID is nil.
func (s *ProductStore) AssignCategory(ctx context.Context, userID int64, sku string, categoryID *string) error {
	if categoryID != nil {
		var id string
		err := s.DB.GetContext(ctx, &id, `SELECT id FROM categories WHERE user_id = ? AND id = ?`, userID, *categoryID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrCategoryNotFound
		}
		if err != nil {
			return fmt.Errorf("loading category %s: %w", *categoryID, err)
		}
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO products (user_id, sku, category_id, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, sku) DO UPDATE SET
			category_id = excluded.category_id,
			updated_at = excluded.updated_at`,
		userID, sku, nullString(categoryID), formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("assigning category to %s: %w", sku, err)
	}
	return nil
}
