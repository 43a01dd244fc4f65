package milkings

import (
	"context"

	"livestock-ledger/internal/domain/animals"
)

type Repository interface {
	Create(ctx context.Context, m Milking) error
	ListByAnimal(ctx context.Context, animalID string) ([]Milking, error)
}

// AnimalLookup es lo único que este módulo necesita del módulo animals.
type AnimalLookup interface {
	GetByID(ctx context.Context, id string) (animals.Animal, error)
}
