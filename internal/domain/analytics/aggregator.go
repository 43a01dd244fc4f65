package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Row es una fila cruda del ledger: una muerte, un ordeñe o una venta.
type Row struct {
	CreatedAt      time.Time
	OrganizationID string
	AnimalTypeID   string
	Value          decimal.Decimal
}

type Dimensions struct {
	OrganizationID string
	AnimalTypeID   string
}

type Bucket struct {
	Key   string // 2006-01-02 (día) o 2006-01 (mes)
	Label string
	Start time.Time
	Count int
	Sum   decimal.Decimal
}

// Series: una serie densa por (organización, tipo de animal).
type Series struct {
	OrganizationID string
	AnimalTypeID   string
	Buckets        []Bucket
}

// Aggregate convierte filas crudas en series densas sobre rng.
// Cada bucket del rango existe aunque esté en cero; las filas fuera del rango o de
// otras dimensiones se descartan. Sin filas devuelve una serie en cero con dims.
func Aggregate(rows []Row, rng Range, dims Dimensions) []Series {
	index := map[Dimensions]*Series{}
	positions := bucketPositions(rng)

	for _, row := range rows {
		if dims.OrganizationID != "" && row.OrganizationID != dims.OrganizationID {
			continue
		}
		if dims.AnimalTypeID != "" && row.AnimalTypeID != dims.AnimalTypeID {
			continue
		}
		at := row.CreatedAt.UTC()
		if at.Before(rng.Start) || !at.Before(rng.End) {
			continue
		}
		pos, ok := positions[rng.Granularity.key(at)]
		if !ok {
			continue
		}

		group := Dimensions{OrganizationID: row.OrganizationID, AnimalTypeID: row.AnimalTypeID}
		s, ok := index[group]
		if !ok {
			s = &Series{
				OrganizationID: group.OrganizationID,
				AnimalTypeID:   group.AnimalTypeID,
				Buckets:        emptyBuckets(rng),
			}
			index[group] = s
		}

		b := &s.Buckets[pos]
		b.Count++
		b.Sum = b.Sum.Add(row.Value)
	}

	if len(index) == 0 {
		return []Series{{
			OrganizationID: dims.OrganizationID,
			AnimalTypeID:   dims.AnimalTypeID,
			Buckets:        emptyBuckets(rng),
		}}
	}

	out := make([]Series, 0, len(index))
	for _, s := range index {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrganizationID != out[j].OrganizationID {
			return out[i].OrganizationID < out[j].OrganizationID
		}
		return out[i].AnimalTypeID < out[j].AnimalTypeID
	})
	return out
}

func emptyBuckets(rng Range) []Bucket {
	out := make([]Bucket, 0, 31)
	for t := rng.Granularity.bucketStart(rng.Start); t.Before(rng.End); t = rng.Granularity.next(t) {
		out = append(out, Bucket{
			Key:   rng.Granularity.key(t),
			Label: rng.Granularity.label(t),
			Start: t,
			Sum:   decimal.Zero,
		})
	}
	return out
}

func bucketPositions(rng Range) map[string]int {
	idx := map[string]int{}
	for i, b := range emptyBuckets(rng) {
		idx[b.Key] = i
	}
	return idx
}
