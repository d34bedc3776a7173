package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"vessel-registry/internal/core/domain"
)

const (
	// DefaultPageSize applies when a list request carries no limit.
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validationError maps the first failed field onto its domain error.
func validationError(err error, fieldErrors map[string]error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	fe := verrs[0]
	if known, ok := fieldErrors[fe.StructField()]; ok {
		return fmt.Errorf("%w (%s)", known, fe.Tag())
	}
	return fmt.Errorf("%w: %s failed on %s", domain.ErrValidation, fe.Field(), fe.Tag())
}

// PageLimit resolves a requested list limit into the page size served.
func PageLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
