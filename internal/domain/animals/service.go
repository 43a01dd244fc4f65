package animals

import (
	"context"
	"strings"
	"time"

	"livestock-ledger/internal/platform/apperr"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Code           string
	OrganizationID string
	AnimalTypeID   string
	Gender         string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Animal, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return Animal{}, apperr.Invalid("code", "required")
	}
	org := strings.TrimSpace(in.OrganizationID)
	if org == "" {
		return Animal{}, apperr.Invalid("organizationId", "required")
	}
	gender, ok := ParseGender(strings.ToLower(strings.TrimSpace(in.Gender)))
	if !ok {
		return Animal{}, apperr.Invalid("gender", "must be male, female or unknown")
	}

	now := s.now().UTC()
	a := Animal{
		ID:             uuid.NewString(),
		Code:           code,
		OrganizationID: org,
		AnimalTypeID:   strings.TrimSpace(in.AnimalTypeID),
		Gender:         gender,
		Status:         StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	if strings.TrimSpace(id) == "" {
		return Animal{}, apperr.Invalid("animalId", "required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, organizationID, code string) (Animal, error) {
	return s.repo.GetByCode(ctx, strings.TrimSpace(organizationID), strings.TrimSpace(code))
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Animal, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Invalid("status", "unknown status")
	}
	return s.repo.List(ctx, f)
}
