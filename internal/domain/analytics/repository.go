package analytics

import (
	"context"
	"time"
)

// Source es el tipo de fila que se agrega.
// @Enum deaths, milk, sales
type Source string

const (
	SourceDeaths Source = "deaths" // Value = Death.Number, tiempo = CreatedAt
	SourceMilk   Source = "milk"   // Value = Milking.Quantity, tiempo = CreatedAt
	SourceSales  Source = "sales"  // Value = Sale.Price, tiempo = Sale.Date
)

func (s Source) Valid() bool {
	switch s {
	case SourceDeaths, SourceMilk, SourceSales:
		return true
	}
	return false
}

// RowFilter se arma una vez por request. [From, To) en UTC.
// El store excluye filas soft-deleted.
type RowFilter struct {
	Source         Source
	From           time.Time
	To             time.Time
	OrganizationID string
	AnimalTypeID   string
}

type Repository interface {
	Rows(ctx context.Context, f RowFilter) ([]Row, error)
}
