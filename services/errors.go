package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientPayment = errors.New("amount paid is below the order total")
	ErrServiceUnavailable  = errors.New("service is not available")
	ErrEmptyCart           = errors.New("cart is empty")
)

// ValidationError names the offending field; it matches ErrInvalidInput
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// LineNotFoundError rejects an order that references services missing
// from the live catalog.
type LineNotFoundError struct {
	Missing []string
}

func (e *LineNotFoundError) Error() string {
	return "services not found: " + strings.Join(e.Missing, ", ")
}
