// Package errors provides the error taxonomy shared by parsers, services and
// handlers. Import failures are AppErrors so callers can tell "file rejected"
// apart from storage failures, which are returned unchanged.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches any AppError carrying the same code, so a wrapped copy of a
// sentinel still satisfies errors.Is(err, sentinel).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Import errors. All of them abort the whole import.
var (
	ErrNoFileSelected       = &AppError{Code: "NO_FILE_SELECTED", Message: "No file selected", StatusCode: http.StatusBadRequest}
	ErrUnsupportedFileType  = &AppError{Code: "UNSUPPORTED_FILE_TYPE", Message: "Unsupported file type", StatusCode: http.StatusUnsupportedMediaType}
	ErrRequiredSheetMissing = &AppError{Code: "REQUIRED_SHEET_MISSING", Message: "Required sheet not found", StatusCode: http.StatusUnprocessableEntity}
	ErrUnreadableFile       = &AppError{Code: "UNREADABLE_FILE", Message: "File could not be read", StatusCode: http.StatusBadRequest}
)

// General errors.
var (
	ErrInvalidInput = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
)

// Resource errors.
var (
	ErrImportNotFound   = &AppError{Code: "IMPORT_NOT_FOUND", Message: "Import not found", StatusCode: http.StatusNotFound}
	ErrCategoryNotFound = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
)
