package memory

import (
	"context"
	"sort"

	"livestock-ledger/internal/domain/milkings"
	"livestock-ledger/internal/platform/apperr"
)

type milkingsRepo struct {
	db *DB
}

func NewMilkingsRepo(db *DB) milkings.Repository {
	return &milkingsRepo{db: db}
}

func (r *milkingsRepo) Create(ctx context.Context, m milkings.Milking) error {
	return r.db.update(ctx, func(st *state) error {
		if _, exists := st.milkings[m.ID]; exists {
			return apperr.Conflict("milking %s already exists", m.ID)
		}
		st.milkings[m.ID] = m
		return nil
	})
}

func (r *milkingsRepo) ListByAnimal(ctx context.Context, animalID string) ([]milkings.Milking, error) {
	out := make([]milkings.Milking, 0)
	err := r.db.view(ctx, func(st *state) error {
		for _, m := range st.milkings {
			if m.AnimalID == animalID && liveOnly(m.DeletedAt) {
				out = append(out, m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
