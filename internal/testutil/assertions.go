package testutil

import (
	"errors"
	"testing"

	apperrors "kumoney/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertErrorDetail checks that err is an *AppError whose Details[key] equals want.
func AssertErrorDetail(t *testing.T, err error, key string, want any) {
	t.Helper()

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	got, ok := appErr.Details[key]
	if !ok {
		t.Fatalf("expected detail %q on %s, details: %v", key, appErr.Code, appErr.Details)
	}
	if got != want {
		t.Errorf("expected detail %q = %v (%T), got %v (%T)", key, want, want, got, got)
	}
}
