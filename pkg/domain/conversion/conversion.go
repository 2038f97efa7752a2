// Package conversion holds the persisted unit-conversion record and the
// rules every record must satisfy before it reaches storage.
package conversion

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/amirasaad/convlog/pkg/domain"
)

// HistoryLimit is the maximum number of records returned by a history listing.
const HistoryLimit = 50

// Timestamps must fall within four-digit years so every backend can store
// and read them back unchanged.
const (
	MinYear = 1
	MaxYear = 9999
)

var (
	// ErrInvalidRecord is returned when a record is missing a field or carries
	// a value that cannot be stored.
	ErrInvalidRecord = fmt.Errorf("invalid conversion record: %w", domain.ErrValidation)
	// ErrInvalidTimestamp is returned when a timestamp cannot be parsed or
	// falls outside years 1 through 9999.
	ErrInvalidTimestamp = fmt.Errorf("invalid timestamp: %w", ErrInvalidRecord)
)

// Record is a single unit-conversion event as submitted by a client.
type Record struct {
	ID         string    `json:"id"`
	InputValue float64   `json:"inputValue"`
	FromUnit   string    `json:"fromUnit"`
	ToUnit     string    `json:"toUnit"`
	Result     float64   `json:"result"`
	Timestamp  time.Time `json:"timestamp"`
}

// New builds a Record and validates it. The timestamp is normalized to UTC.
func New(
	id string,
	inputValue float64,
	fromUnit, toUnit string,
	result float64,
	timestamp time.Time,
) (*Record, error) {
	r := &Record{
		ID:         id,
		InputValue: inputValue,
		FromUnit:   fromUnit,
		ToUnit:     toUnit,
		Result:     result,
		Timestamp:  timestamp.UTC(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate reports whether the record can be persisted.
func (r *Record) Validate() error {
	var errs []error
	if strings.TrimSpace(r.ID) == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if strings.TrimSpace(r.FromUnit) == "" {
		errs = append(errs, errors.New("fromUnit is required"))
	}
	if strings.TrimSpace(r.ToUnit) == "" {
		errs = append(errs, errors.New("toUnit is required"))
	}
	if !isFinite(r.InputValue) {
		errs = append(errs, errors.New("inputValue must be a finite number"))
	}
	if !isFinite(r.Result) {
		errs = append(errs, errors.New("result must be a finite number"))
	}
	switch y := r.Timestamp.UTC().Year(); {
	case r.Timestamp.IsZero():
		errs = append(errs, errors.New("timestamp is required"))
	case y < MinYear || y > MaxYear:
		errs = append(errs, fmt.Errorf("%w: year %d is outside %d-%d", ErrInvalidTimestamp, y, MinYear, MaxYear))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidRecord, errors.Join(errs...))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Outcome tells whether a submission inserted a new record or replaced one
// with the same id.
type Outcome int

const (
	// Created means no record with the submitted id existed.
	Created Outcome = iota + 1
	// Replaced means every field of an existing record was overwritten.
	Replaced
)

// String returns the lowercase name used in API responses and logs.
func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}
