package repository

import (
	"errors"
	"fmt"

	"github.com/amirasaad/convlog/pkg/domain"
	"gorm.io/gorm"
)

// MapGormErrorToDomain converts GORM errors to domain errors.
// This keeps infrastructure concerns (database errors) within the infrastructure layer.
// Traverses the error chain to find GORM errors and maps them to appropriate domain errors.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}

	currentErr := err
	for currentErr != nil {
		switch {
		case errors.Is(currentErr, gorm.ErrDuplicatedKey):
			return domain.ErrAlreadyExists
		case errors.Is(currentErr, gorm.ErrRecordNotFound):
			return domain.ErrNotFound
		}

		currentErr = errors.Unwrap(currentErr)
	}

	return err
}

// ToStorageError maps err like MapGormErrorToDomain and marks anything that
// is not already a domain error as a storage fault, keeping the cause.
func ToStorageError(err error) error {
	mapped := MapGormErrorToDomain(err)
	if mapped == nil || isDomainError(mapped) {
		return mapped
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, mapped)
}

// WrapError wraps a GORM operation and automatically maps errors.
//
// Usage:
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(model).Error
//	})
func WrapError(op func() error) error {
	return ToStorageError(op())
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrStorage) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrAlreadyExists)
}
