package domain

import "errors"

// Domain errors
var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidMonthRange   = errors.New("month range start is after end")
	ErrUnknownCategoryKind = errors.New("unknown category kind")
)

// Validation constants
const (
	MaxLabelLength = 100
)
