package conversion_test

import (
	"math"
	"testing"
	"time"

	"github.com/amirasaad/convlog/pkg/domain"
	"github.com/amirasaad/convlog/pkg/domain/conversion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		id      string
		input   float64
		from    string
		to      string
		result  float64
		ts      time.Time
		wantErr bool
	}{
		{name: "valid", id: "t1", input: 10, from: "pounds", to: "kilograms", result: 4.5359237, ts: ts},
		{name: "zero values are allowed", id: "t2", input: 0, from: "kg", to: "lb", result: 0, ts: ts},
		{name: "negative values are allowed", id: "t3", input: -1, from: "c", to: "f", result: 30.2, ts: ts},
		{name: "missing id", id: "", input: 1, from: "kg", to: "lb", result: 2.2, ts: ts, wantErr: true},
		{name: "blank from unit", id: "x", input: 1, from: "  ", to: "lb", result: 2.2, ts: ts, wantErr: true},
		{name: "missing to unit", id: "x", input: 1, from: "kg", to: "", result: 2.2, ts: ts, wantErr: true},
		{name: "NaN input", id: "x", input: math.NaN(), from: "kg", to: "lb", result: 2.2, ts: ts, wantErr: true},
		{name: "infinite result", id: "x", input: 1, from: "kg", to: "lb", result: math.Inf(1), ts: ts, wantErr: true},
		{name: "zero timestamp", id: "x", input: 1, from: "kg", to: "lb", result: 2.2, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r, err := conversion.New(tc.id, tc.input, tc.from, tc.to, tc.result, tc.ts)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, conversion.ErrInvalidRecord)
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.id, r.ID)
			assert.InDelta(t, tc.input, r.InputValue, 0)
			assert.InDelta(t, tc.result, r.Result, 0)
			assert.Equal(t, tc.from, r.FromUnit)
			assert.Equal(t, tc.to, r.ToUnit)
			assert.True(t, tc.ts.Equal(r.Timestamp))
		})
	}
}

func TestNew_NormalizesTimestampToUTC(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+2", 2*60*60)
	r, err := conversion.New("id", 1, "kg", "lb", 2.2, time.Date(2024, 1, 1, 2, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, r.Timestamp.Location())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), r.Timestamp)
}

func TestNew_TimestampYearRange(t *testing.T) {
	t.Parallel()
	west := time.FixedZone("UTC-5", -5*60*60)

	tests := []struct {
		name    string
		ts      time.Time
		wantErr bool
	}{
		{name: "first representable instant", ts: time.Date(1, 1, 1, 0, 0, 0, 1, time.UTC)},
		{name: "last representable instant", ts: time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC)},
		{name: "year zero", ts: time.Date(0, 6, 1, 0, 0, 0, 0, time.UTC), wantErr: true},
		{name: "year 10000", ts: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC), wantErr: true},
		{name: "offset pushes past 9999", ts: time.Date(9999, 12, 31, 23, 0, 0, 0, west), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r, err := conversion.New("id", 1, "kg", "lb", 2.2, tc.ts)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, conversion.ErrInvalidTimestamp)
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.ts.Equal(r.Timestamp))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()
	midnight := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2024-01-01T00:00:00", want: midnight},
		{in: "2024-01-01T00:00:00Z", want: midnight},
		{in: "2024-01-01T02:00:00+02:00", want: midnight},
		{in: "2024-01-01T00:00:00.250", want: midnight.Add(250 * time.Millisecond)},
		{in: "2024-01-01T00:00:00.123456Z", want: midnight.Add(123456 * time.Microsecond)},
		{in: "2024-01-01 00:00:00", want: midnight},
		{in: "2024-01-01T00:00", want: midnight},
		{in: "2024-01-01", want: midnight},
		{in: " 2024-01-01T00:00:00Z ", want: midnight},
		{in: "", wantErr: true},
		{in: "yesterday", wantErr: true},
		{in: "2024-13-01T00:00:00", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			got, err := conversion.ParseTimestamp(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, conversion.ErrInvalidTimestamp)
				assert.ErrorIs(t, err, conversion.ErrInvalidRecord)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestTimestampFromUnix(t *testing.T) {
	t.Parallel()
	got, err := conversion.TimestampFromUnix(1704067200.5)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, int(500*time.Millisecond), time.UTC), got)

	_, err = conversion.TimestampFromUnix(math.NaN())
	assert.ErrorIs(t, err, conversion.ErrInvalidTimestamp)
}

func TestTimestampFromUnix_Range(t *testing.T) {
	t.Parallel()
	got, err := conversion.TimestampFromUnix(253402300799)
	require.NoError(t, err)
	assert.Equal(t, time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC), got)

	got, err = conversion.TimestampFromUnix(-62135596800)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), got)

	for _, sec := range []float64{253402300800, -62135596801, 1e300, -1e300, math.Inf(1)} {
		_, err := conversion.TimestampFromUnix(sec)
		assert.ErrorIs(t, err, conversion.ErrInvalidTimestamp, "%v", sec)
	}
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "created", conversion.Created.String())
	assert.Equal(t, "replaced", conversion.Replaced.String())
	assert.Equal(t, "unknown", conversion.Outcome(0).String())
}
