package milkings

import (
	"context"
	"strings"
	"time"

	"livestock-ledger/internal/domain/animals"
	"livestock-ledger/internal/platform/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	repo    Repository
	animals AnimalLookup
	now     func() time.Time
}

func NewService(repo Repository, animals AnimalLookup) *Service {
	return &Service{
		repo:    repo,
		animals: animals,
		now:     time.Now,
	}
}

type RecordInput struct {
	Quantity decimal.Decimal
	At       *time.Time // nil = ahora
	UserID   string
}

// Record registra un ordeñe. Animales muertos o vendidos no producen leche en la granja.
func (s *Service) Record(ctx context.Context, animalID string, in RecordInput) (Milking, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return Milking{}, apperr.Invalid("animalId", "required")
	}
	if !in.Quantity.IsPositive() {
		return Milking{}, apperr.Invalid("quantity", "must be greater than zero")
	}

	a, err := s.animals.GetByID(ctx, animalID)
	if err != nil {
		return Milking{}, err
	}
	switch a.Status {
	case animals.StatusDead:
		return Milking{}, apperr.Conflict("animal %s is dead", a.ID)
	case animals.StatusSold:
		return Milking{}, apperr.Conflict("animal %s is sold", a.ID)
	}

	at := s.now().UTC()
	if in.At != nil {
		at = in.At.UTC()
	}
	m := Milking{
		ID:             uuid.NewString(),
		AnimalID:       a.ID,
		OrganizationID: a.OrganizationID,
		AnimalTypeID:   a.AnimalTypeID,
		Quantity:       in.Quantity,
		UserCreatedID:  in.UserID,
		CreatedAt:      at,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return Milking{}, err
	}
	return m, nil
}

func (s *Service) ListByAnimal(ctx context.Context, animalID string) ([]Milking, error) {
	if strings.TrimSpace(animalID) == "" {
		return nil, apperr.Invalid("animalId", "required")
	}
	if _, err := s.animals.GetByID(ctx, animalID); err != nil {
		return nil, err
	}
	return s.repo.ListByAnimal(ctx, animalID)
}
