package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/username/sellerledger/backend/src/database"
)

// SetupTestDB opens a private in-memory database with the full schema. It is
// closed when the test ends.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.InitDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}
