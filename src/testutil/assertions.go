package testutil

import (
	"errors"
	"math"
	"testing"

	apperrors "github.com/username/sellerledger/backend/src/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expected *apperrors.AppError) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expected.Code)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expected.Code {
		t.Errorf("expected error code %q, got %q (message: %s)", expected.Code, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertMoney compares two amounts to the cent.
func AssertMoney(t *testing.T, name string, got, want float64) {
	t.Helper()

	if math.Abs(got-want) > 0.005 {
		t.Errorf("%s: expected %.2f, got %.2f", name, want, got)
	}
}
