package lifecycle

import (
	"context"
	"time"

	"livestock-ledger/internal/domain/animals"
)

// Tx es la unidad de trabajo del ledger. Todo lo escrito a través de un Tx
// se confirma junto o se descarta junto.
//
// Las lecturas ignoran filas soft-deleted. Los Get* devuelven apperr.NotFoundError.
// InsertSale/InsertDeath devuelven apperr.ConflictError si violan
// "una venta abierta por animal" o "una muerte por animal".
type Tx interface {
	GetAnimal(ctx context.Context, id string) (animals.Animal, error)
	GetAnimalByCode(ctx context.Context, organizationID, code string) (animals.Animal, error)
	GetSale(ctx context.Context, id string) (Sale, error)
	// GetOpenSaleForAnimal: ok=false si el animal no tiene venta sin borrar.
	GetOpenSaleForAnimal(ctx context.Context, animalID string) (Sale, bool, error)

	InsertSale(ctx context.Context, s Sale) error
	UpdateSale(ctx context.Context, s Sale) error
	SoftDeleteSale(ctx context.Context, id string, at time.Time) error
	UpdateAnimalStatus(ctx context.Context, id string, status animals.Status, at time.Time) error
	InsertDeath(ctx context.Context, d Death) error
}

type Store interface {
	// WithinTx corre fn en una transacción; si fn devuelve error se hace rollback.
	// Fallas de la capa transaccional (timeout, deadlock, busy) vuelven como
	// apperr.ConflictError retryable.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	GetSale(ctx context.Context, id string) (Sale, error)
	ListSales(ctx context.Context, f SaleFilter) ([]Sale, error)
	ListDeaths(ctx context.Context, f DeathFilter) ([]Death, error)
}
