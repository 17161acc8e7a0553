package domain

import (
	"fmt"
	"strings"
)

// Validation constants
const (
	MaxAmount          int64 = 1_000_000_000_000
	MaxCategoryLength        = 64
	MaxReferenceLength       = 128
	MaxReasonLength          = 255
)

// ValidateAmount validates a mutation amount.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > MaxAmount {
		return fmt.Errorf("%w: maximum amount is %d", ErrAmountTooLarge, MaxAmount)
	}
	return nil
}

// ValidateCategory validates a free-text category label.
func ValidateCategory(category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("%w: category cannot be empty", ErrInvalidCategory)
	}
	if len(category) > MaxCategoryLength {
		return fmt.Errorf("%w: category exceeds %d characters", ErrInvalidCategory, MaxCategoryLength)
	}
	return nil
}

// ValidateExternalRef validates an idempotency key.
func ValidateExternalRef(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ErrMissingReference
	}
	if len(ref) > MaxReferenceLength {
		return fmt.Errorf("%w: reference exceeds %d characters", ErrInvalidIDFormat, MaxReferenceLength)
	}
	return nil
}

// ValidateDayOfMonth validates a recurring transfer trigger day.
func ValidateDayOfMonth(day int) error {
	if day < 1 || day > 31 {
		return ErrInvalidDayOfMonth
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
