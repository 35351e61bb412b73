package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/username/sellerledger/backend/src/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	import_id TEXT NOT NULL DEFAULT '',
	hash TEXT NOT NULL,
	transaction_id TEXT NOT NULL,
	platform TEXT NOT NULL,
	order_date TEXT,
	sku TEXT NOT NULL,
	description TEXT,
	quantity INTEGER NOT NULL DEFAULT 0,
	selling_price REAL NOT NULL DEFAULT 0,
	total REAL NOT NULL DEFAULT 0,
	acc_net_sales REAL NOT NULL DEFAULT 0,
	type TEXT,
	order_status TEXT,
	shipping_fee REAL NOT NULL DEFAULT 0,
	marketplace_fee REAL NOT NULL DEFAULT 0,
	other_fees REAL NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	UNIQUE(user_id, hash)
);

CREATE INDEX IF NOT EXISTS idx_transactions_import ON transactions(user_id, import_id);

CREATE TABLE IF NOT EXISTS categories (
	user_id INTEGER NOT NULL,
	id TEXT NOT NULL,
	name TEXT NOT NULL,
	cost_price REAL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY(user_id, id)
);

CREATE TABLE IF NOT EXISTS products (
	user_id INTEGER NOT NULL,
	sku TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category_id TEXT,
	custom_cost_price REAL,
	base_price REAL NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL,
	PRIMARY KEY(user_id, sku)
);

CREATE TABLE IF NOT EXISTS imports (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL,
	platform TEXT NOT NULL,
	filename TEXT NOT NULL DEFAULT '',
	rows_parsed INTEGER NOT NULL DEFAULT 0,
	rows_inserted INTEGER NOT NULL DEFAULT 0,
	duplicates_skipped INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
`

// columnMigration adds a column to a table created by an older build.
type columnMigration struct {
	table, column, ddl string
}

var columnMigrations = []columnMigration{
	{"transactions", "import_id", "ALTER TABLE transactions ADD COLUMN import_id TEXT NOT NULL DEFAULT ''"},
	{"transactions", "acc_net_sales", "ALTER TABLE transactions ADD COLUMN acc_net_sales REAL NOT NULL DEFAULT 0"},
	{"products", "base_price", "ALTER TABLE products ADD COLUMN base_price REAL NOT NULL DEFAULT 0"},
}

// InitDB opens the sqlite database at databasePath and ensures the schema.
// ":memory:" is accepted and gives a private database per call.
func InitDB(databasePath string) (*sqlx.DB, error) {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	db, err := sqlx.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}
	// sqlite serialises writers anyway; one connection also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)

	logger.L.Info("Checking database migrations", "databasePath", databasePath)
	if err := migrateColumns(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	logger.L.Info("Database tables ensured/created.")
	return db, nil
}

func migrateColumns(db *sqlx.DB) error {
	for _, m := range columnMigrations {
		exists, err := tableExists(db, m.table)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		columns, err := tableColumns(db, m.table)
		if err != nil {
			return err
		}
		if columns[m.column] {
			continue
		}
		if _, err := db.Exec(m.ddl); err != nil {
			return fmt.Errorf("adding column %s.%s: %w", m.table, m.column, err)
		}
		logger.L.Info("Added column", "table", m.table, "column", m.column)
	}
	return nil
}

func tableExists(db *sqlx.DB, table string) (bool, error) {
	var name string
	err := db.Get(&name, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking for table %s: %w", table, err)
	}
	return true, nil
}

func tableColumns(db *sqlx.DB, table string) (map[string]bool, error) {
	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return nil, fmt.Errorf("querying schema for %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var cid, notNull, pk int
		var name, dataType string
		var dflt interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning column info for %s: %w", table, err)
		}
		columns[name] = true
	}
	return columns, rows.Err()
}

// Timestamps are stored as fixed-width UTC text so they sort correctly.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
