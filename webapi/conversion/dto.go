package conversion

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/amirasaad/convlog/pkg/domain/conversion"
)

//revive:disable

// ConvertRequest represents the request body for submitting a conversion.
// Numeric fields are pointers so that zero is accepted while absence is not.
type ConvertRequest struct {
	ID         string     `json:"id" validate:"required"`
	InputValue *float64   `json:"inputValue" validate:"required"`
	FromUnit   string     `json:"fromUnit" validate:"required"`
	ToUnit     string     `json:"toUnit" validate:"required"`
	Result     *float64   `json:"result" validate:"required"`
	Timestamp  *Timestamp `json:"timestamp" validate:"required"`
}

// ConvertResponse acknowledges a stored conversion.
type ConvertResponse struct {
	Status  string `json:"status"`
	Outcome string `json:"outcome"`
}

// RecordDTO is the API representation of a stored conversion.
type RecordDTO struct {
	ID         string  `json:"id"`
	InputValue float64 `json:"inputValue"`
	FromUnit   string  `json:"fromUnit"`
	ToUnit     string  `json:"toUnit"`
	Result     float64 `json:"result"`
	Timestamp  string  `json:"timestamp"`
}

// Timestamp accepts an ISO 8601 string or a number of Unix seconds.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := conversion.ParseTimestamp(s)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}
	var sec float64
	if err := json.Unmarshal(b, &sec); err != nil {
		return conversion.ErrInvalidTimestamp
	}
	parsed, err := conversion.TimestampFromUnix(sec)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ToRecord builds the domain record, validating it.
func (r *ConvertRequest) ToRecord() (*conversion.Record, error) {
	return conversion.New(
		r.ID,
		*r.InputValue,
		r.FromUnit,
		r.ToUnit,
		*r.Result,
		r.Timestamp.Time,
	)
}

// ToRecordDTO maps a domain record to its API representation.
func ToRecordDTO(r *conversion.Record) RecordDTO {
	return RecordDTO{
		ID:         r.ID,
		InputValue: r.InputValue,
		FromUnit:   r.FromUnit,
		ToUnit:     r.ToUnit,
		Result:     r.Result,
		Timestamp:  conversion.FormatTimestamp(r.Timestamp),
	}
}

// ToRecordDTOs maps records in order. The result is never nil.
func ToRecordDTOs(records []*conversion.Record) []RecordDTO {
	out := make([]RecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, ToRecordDTO(r))
	}
	return out
}
