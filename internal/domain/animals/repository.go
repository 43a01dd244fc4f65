package animals

import "context"

// Repository: GetByID/GetByCode devuelven apperr.NotFoundError si no existe;
// Create devuelve apperr.ConflictError si el código ya existe en la organización.
type Repository interface {
	Create(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, id string) (Animal, error)
	GetByCode(ctx context.Context, organizationID, code string) (Animal, error)
	List(ctx context.Context, f ListFilter) ([]Animal, error)
}
