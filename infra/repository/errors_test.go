package repository

import (
	"errors"
	"testing"

	"github.com/amirasaad/convlog/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapGormErrorToDomain(t *testing.T) {
	t.Parallel()

	someErr := errors.New("some other error")
	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{
			name:     "nil error returns nil",
			input:    nil,
			expected: nil,
		},
		{
			name:     "duplicate key error maps to ErrAlreadyExists",
			input:    gorm.ErrDuplicatedKey,
			expected: domain.ErrAlreadyExists,
		},
		{
			name:     "record not found error maps to ErrNotFound",
			input:    gorm.ErrRecordNotFound,
			expected: domain.ErrNotFound,
		},
		{
			name:     "non-GORM error returns original",
			input:    someErr,
			expected: someErr,
		},
		{
			name:     "wrapped duplicate key error maps correctly",
			input:    errors.Join(errors.New("outer error"), gorm.ErrDuplicatedKey),
			expected: domain.ErrAlreadyExists,
		},
		{
			name:     "wrapped record not found error maps correctly",
			input:    errors.Join(errors.New("outer error"), gorm.ErrRecordNotFound),
			expected: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := MapGormErrorToDomain(tt.input)
			if tt.expected == nil {
				require.NoError(t, result)
				return
			}
			require.Error(t, result)
			assert.ErrorIs(t, result, tt.expected)
		})
	}
}

func TestToStorageError(t *testing.T) {
	t.Parallel()

	t.Run("nil stays nil", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, ToStorageError(nil))
	})

	t.Run("driver error becomes storage fault", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("disk I/O error")
		err := ToStorageError(cause)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStorage)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("domain errors are kept", func(t *testing.T) {
		t.Parallel()
		err := ToStorageError(gorm.ErrRecordNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NotErrorIs(t, err, domain.ErrStorage)
	})

	t.Run("WrapError runs the operation", func(t *testing.T) {
		t.Parallel()
		called := false
		err := WrapError(func() error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
	})
}
