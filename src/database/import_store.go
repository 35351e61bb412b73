package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/username/sellerledger/backend/src/errors"
	"github.com/username/sellerledger/backend/src/models"
)

type importRow struct {
	ID                string `db:"id"`
	UserID            int64  `db:"user_id"`
	Platform          string `db:"platform"`
	Filename          string `db:"filename"`
	RowsParsed        int    `db:"rows_parsed"`
	RowsInserted      int    `db:"rows_inserted"`
	DuplicatesSkipped int    `db:"duplicates_skipped"`
	CreatedAt         string `db:"created_at"`
}

func (r importRow) toModel() models.ImportRecord {
	return models.ImportRecord{
		ID:                r.ID,
		UserID:            r.UserID,
		Platform:          models.Platform(r.Platform),
		Filename:          r.Filename,
		RowsParsed:        r.RowsParsed,
		RowsInserted:      r.RowsInserted,
		DuplicatesSkipped: r.DuplicatesSkipped,
		CreatedAt:         parseTime(r.CreatedAt),
	}
}

// ImportStore keeps one record per upload so its rows can be rolled back.
type ImportStore struct {
	DB *sqlx.DB
}

func NewImportStore(db *sqlx.DB) *ImportStore {
	return &ImportStore{DB: db}
}

// StoreImport writes txs and, when at least one of them is new, rec in one
// database transaction, so every stored row has an import to roll back.
// rec.RowsInserted is set from the insert and rows already stored are added
// to rec.DuplicatesSkipped. It returns the number of rows written.
func (s *ImportStore) StoreImport(ctx context.Context, rec models.ImportRecord, txs []models.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	dbTx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning import %s: %w", rec.ID, err)
	}
	defer dbTx.Rollback()

	inserted, err := insertTransactions(ctx, dbTx, rec.UserID, txs)
	if err != nil {
		return 0, err
	}
	if inserted == 0 {
		return 0, nil
	}

	row := importRow{
		ID:                rec.ID,
		UserID:            rec.UserID,
		Platform:          string(rec.Platform),
		Filename:          rec.Filename,
		RowsParsed:        rec.RowsParsed,
		RowsInserted:      inserted,
		DuplicatesSkipped: rec.DuplicatesSkipped + len(txs) - inserted,
		CreatedAt:         formatTime(rec.CreatedAt),
	}
	_, err = dbTx.NamedExecContext(ctx, `
		INSERT INTO imports (id, user_id, platform, filename, rows_parsed, rows_inserted, duplicates_skipped, created_at)
		VALUES (:id, :user_id, :platform, :filename, :rows_parsed, :rows_inserted, :duplicates_skipped, :created_at)`, row)
	if err != nil {
		return 0, fmt.Errorf("recording import %s: %w", rec.ID, err)
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import %s: %w", rec.ID, err)
	}
	return inserted, nil
}

// ListImports returns the user's imports, newest first.
func (s *ImportStore) ListImports(ctx context.Context, userID int64) ([]models.ImportRecord, error) {
	var rows []importRow
	err := s.DB.SelectContext(ctx, &rows,
		`SELECT * FROM imports WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing imports: %w", err)
	}
	out := make([]models.ImportRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// GetImport loads one import record of userID.
func (s *ImportStore) GetImport(ctx context.Context, userID int64, importID string) (*models.ImportRecord, error) {
	var row importRow
	err := s.DB.GetContext(ctx, &row, `SELECT * FROM imports WHERE user_id = ? AND id = ?`, userID, importID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrImportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading import %s: %w", importID, err)
	}
	rec := row.toModel()
	return &rec, nil
}

// DeleteImport removes the rows an import inserted together with its record.
// It returns the number of transactions removed.
func (s *ImportStore) DeleteImport(ctx context.Context, userID int64, importID string) (int, error) {
	dbTx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning rollback: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, `DELETE FROM imports WHERE user_id = ? AND id = ?`, userID, importID)
	if err != nil {
		return 0, fmt.Errorf("deleting import %s: %w", importID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, apperrors.ErrImportNotFound
	}

	res, err = dbTx.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ? AND import_id = ?`, userID, importID)
	if err != nil {
		return 0, fmt.Errorf("deleting rows of import %s: %w", importID, err)
	}
	removed, _ := res.RowsAffected()

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rollback: %w", err)
	}
	return int(removed), nil
}
