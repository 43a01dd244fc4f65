package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"livestock-ledger/internal/domain/animals"
	"livestock-ledger/internal/platform/apperr"
)

type animalsRepo struct {
	db *DB
}

func NewAnimalsRepo(db *DB) animals.Repository {
	return &animalsRepo{db: db}
}

func (r *animalsRepo) Create(ctx context.Context, a animals.Animal) error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	return r.db.update(ctx, func(st *state) error {
		if _, exists := st.animals[a.ID]; exists {
			return apperr.Conflict("animal %s already exists", a.ID)
		}
		st.animals[a.ID] = a
		return nil
	})
}

func (r *animalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	var out animals.Animal
	err := r.db.view(ctx, func(st *state) error {
		var err error
		out, err = st.animal(id)
		return err
	})
	return out, err
}

func (r *animalsRepo) GetByCode(ctx context.Context, organizationID, code string) (animals.Animal, error) {
	var out animals.Animal
	err := r.db.view(ctx, func(st *state) error {
		var err error
		out, err = st.animalByCode(organizationID, code)
		return err
	})
	return out, err
}

func (r *animalsRepo) List(ctx context.Context, f animals.ListFilter) ([]animals.Animal, error) {
	out := make([]animals.Animal, 0)
	err := r.db.view(ctx, func(st *state) error {
		for _, a := range st.animals {
			if f.OrganizationID != "" && a.OrganizationID != f.OrganizationID {
				continue
			}
			if f.AnimalTypeID != "" && a.AnimalTypeID != f.AnimalTypeID {
				continue
			}
			if f.Status != "" && a.Status != f.Status {
				continue
			}
			out = append(out, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Orden estable por código (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrganizationID != out[j].OrganizationID {
			return out[i].OrganizationID < out[j].OrganizationID
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (s *state) animal(id string) (animals.Animal, error) {
	a, ok := s.animals[id]
	if !ok {
		return animals.Animal{}, apperr.NotFound("animal", id)
	}
	return a, nil
}

func (s *state) animalByCode(organizationID, code string) (animals.Animal, error) {
	for _, a := range s.animals {
		if a.OrganizationID == organizationID && a.Code == code {
			return a, nil
		}
	}
	return animals.Animal{}, apperr.NotFound("animal", code)
}
