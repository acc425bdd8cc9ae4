package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline error kinds. The first four abort the whole request; the
// last two stay local to a single article and degrade its verdict.
var (
	ErrOCRUnavailable         = errors.New("text recovery failed")
	ErrStructuringFailed      = errors.New("structuring failed")
	ErrUnsupportedInvoiceType = errors.New("invoice type not supported")
	ErrArticleShape           = errors.New("unrecognized articles payload")
	ErrArticleUnmatched       = errors.New("article line not found in document")
	ErrInvalidInput           = errors.New("invalid input")
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
