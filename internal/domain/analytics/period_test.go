package analytics

import (
	"testing"
	"time"

	"livestock-ledger/internal/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC)

func TestResolve_Precedence(t *testing.T) {
	rng, err := PeriodSpec{Periode: 7, Year: 2023, Months: 2}.Resolve(now)
	require.NoError(t, err)
	assert.Equal(t, ModeTrailing, rng.Mode)

	rng, err = PeriodSpec{Year: 2023, Months: 2}.Resolve(now)
	require.NoError(t, err)
	assert.Equal(t, ModeMonth, rng.Mode)

	rng, err = PeriodSpec{Year: 2023}.Resolve(now)
	require.NoError(t, err)
	assert.Equal(t, ModeYear, rng.Mode)
	assert.Equal(t, GranularityMonth, rng.Granularity)
}

func TestResolve_TrailingWindowIsInclusive(t *testing.T) {
	rng, err := PeriodSpec{Periode: 7}.Resolve(now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), rng.Start)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), rng.End)
	assert.Len(t, emptyBuckets(rng), 8)
}

func TestResolve_Validation(t *testing.T) {
	cases := map[string]PeriodSpec{
		"months without year": {Months: 2},
		"month too large":     {Year: 2024, Months: 13},
		"month negative":      {Year: 2024, Months: -1},
		"negative periode":    {Periode: -3},
		"nothing":             {},
		"year out of range":   {Year: -5},
		"explicit zero month": {Year: 2024, HasMonths: true},
		"explicit zero days":  {Year: 2024, HasPeriode: true},
		"periode too large":   {Periode: maxPeriode + 1},
	}
	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := spec.Resolve(now)
			assert.True(t, apperr.IsValidation(err), "got %v", err)
		})
	}
}

func TestEndOfMonth(t *testing.T) {
	assert.Equal(t, 29, EndOfMonth(2024, time.February).Day())
	assert.Equal(t, 28, EndOfMonth(2023, time.February).Day())
	assert.Equal(t, 28, EndOfMonth(1900, time.February).Day())
	assert.Equal(t, 29, EndOfMonth(2000, time.February).Day())
	assert.Equal(t, 31, EndOfMonth(2024, time.December).Day())
	assert.Equal(t, 30, EndOfMonth(2024, time.April).Day())
}
