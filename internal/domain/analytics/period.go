package analytics

import (
	"fmt"
	"time"

	"livestock-ledger/internal/platform/apperr"
)

// Mode: cómo se resolvió el PeriodSpec. También es label de métricas.
type Mode string

const (
	ModeTrailing Mode = "periode"
	ModeYear     Mode = "year"
	ModeMonth    Mode = "month"
)

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// PeriodSpec: precedencia Periode > Year > Year+Months.
// Un valor distinto de 0 cuenta como enviado; HasPeriode/HasMonths marcan
// además un 0 explícito, que se rechaza.
type PeriodSpec struct {
	Periode int // días hacia atrás desde hoy
	Year    int
	Months  int // 1..12, requiere Year

	HasPeriode bool
	HasMonths  bool
}

// Range es la ventana resuelta, en UTC. End es exclusivo.
type Range struct {
	Mode        Mode
	Granularity Granularity
	Start       time.Time
	End         time.Time
}

const maxPeriode = 3660

// Resolve valida el período y calcula la ventana respecto de now.
func (p PeriodSpec) Resolve(now time.Time) (Range, error) {
	if p.HasPeriode || p.Periode != 0 {
		if p.Periode < 1 {
			return Range{}, apperr.Invalid("periode", "must be at least 1 day")
		}
		if p.Periode > maxPeriode {
			return Range{}, apperr.Invalid("periode", fmt.Sprintf("must be at most %d days", maxPeriode))
		}
		today := startOfDay(now)
		return Range{
			Mode:        ModeTrailing,
			Granularity: GranularityDay,
			Start:       today.AddDate(0, 0, -p.Periode),
			End:         today.AddDate(0, 0, 1),
		}, nil
	}

	hasMonths := p.HasMonths || p.Months != 0
	if p.Year == 0 {
		if hasMonths {
			return Range{}, apperr.Invalid("months", "requires year")
		}
		return Range{}, apperr.Invalid("period", "one of periode or year is required")
	}
	if p.Year < 1 || p.Year > 9999 {
		return Range{}, apperr.Invalid("year", "out of range")
	}

	if !hasMonths {
		start := time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return Range{
			Mode:        ModeYear,
			Granularity: GranularityMonth,
			Start:       start,
			End:         start.AddDate(1, 0, 0),
		}, nil
	}
	if p.Months < 1 || p.Months > 12 {
		return Range{}, apperr.Invalid("months", "must be between 1 and 12")
	}

	m := time.Month(p.Months)
	return Range{
		Mode:        ModeMonth,
		Granularity: GranularityDay,
		Start:       time.Date(p.Year, m, 1, 0, 0, 0, 0, time.UTC),
		End:         EndOfMonth(p.Year, m).AddDate(0, 0, 1),
	}, nil
}

// EndOfMonth devuelve el último día del mes (00:00 UTC); contempla bisiestos.
func EndOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// bucketStart trunca t al inicio de su bucket.
func (g Granularity) bucketStart(t time.Time) time.Time {
	t = t.UTC()
	if g == GranularityMonth {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return startOfDay(t)
}

func (g Granularity) next(t time.Time) time.Time {
	if g == GranularityMonth {
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}

func (g Granularity) key(t time.Time) string {
	if g == GranularityMonth {
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}

func (g Granularity) label(t time.Time) string {
	if g == GranularityMonth {
		return t.Month().String()
	}
	return t.Format("2006-01-02")
}
