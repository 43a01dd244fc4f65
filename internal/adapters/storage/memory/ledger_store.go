package memory

import (
	"context"
	"sort"
	"time"

	"livestock-ledger/internal/domain/animals"
	"livestock-ledger/internal/domain/lifecycle"
	"livestock-ledger/internal/platform/apperr"
)

type ledgerStore struct {
	db *DB
}

func NewLedgerStore(db *DB) lifecycle.Store {
	return &ledgerStore{db: db}
}

func (l *ledgerStore) WithinTx(ctx context.Context, fn func(tx lifecycle.Tx) error) error {
	return l.db.update(ctx, func(st *state) error {
		return fn(&ledgerTx{st: st})
	})
}

func (l *ledgerStore) GetSale(ctx context.Context, id string) (lifecycle.Sale, error) {
	var out lifecycle.Sale
	err := l.db.view(ctx, func(st *state) error {
		var err error
		out, err = st.liveSale(id)
		return err
	})
	return out, err
}

func (l *ledgerStore) ListSales(ctx context.Context, f lifecycle.SaleFilter) ([]lifecycle.Sale, error) {
	out := make([]lifecycle.Sale, 0)
	err := l.db.view(ctx, func(st *state) error {
		for _, s := range st.sales {
			if !f.IncludeDeleted && !liveOnly(s.DeletedAt) {
				continue
			}
			if f.AnimalID != "" && s.AnimalID != f.AnimalID {
				continue
			}
			if f.OrganizationID != "" && s.OrganizationID != f.OrganizationID {
				continue
			}
			if f.Status != "" && s.Status != f.Status {
				continue
			}
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (l *ledgerStore) ListDeaths(ctx context.Context, f lifecycle.DeathFilter) ([]lifecycle.Death, error) {
	out := make([]lifecycle.Death, 0)
	err := l.db.view(ctx, func(st *state) error {
		for _, d := range st.deaths {
			if !liveOnly(d.DeletedAt) {
				continue
			}
			if f.AnimalID != "" && d.AnimalID != f.AnimalID {
				continue
			}
			if f.OrganizationID != "" && d.OrganizationID != f.OrganizationID {
				continue
			}
			if f.AnimalTypeID != "" && d.AnimalTypeID != f.AnimalTypeID {
				continue
			}
			out = append(out, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ledgerTx opera sobre la copia privada de la transacción; no necesita locks.
type ledgerTx struct {
	st *state
}

func (t *ledgerTx) GetAnimal(_ context.Context, id string) (animals.Animal, error) {
	return t.st.animal(id)
}

func (t *ledgerTx) GetAnimalByCode(_ context.Context, organizationID, code string) (animals.Animal, error) {
	return t.st.animalByCode(organizationID, code)
}

func (t *ledgerTx) GetSale(_ context.Context, id string) (lifecycle.Sale, error) {
	return t.st.liveSale(id)
}

func (t *ledgerTx) GetOpenSaleForAnimal(_ context.Context, animalID string) (lifecycle.Sale, bool, error) {
	for _, s := range t.st.sales {
		if s.AnimalID == animalID && liveOnly(s.DeletedAt) {
			return s, true, nil
		}
	}
	return lifecycle.Sale{}, false, nil
}

func (t *ledgerTx) InsertSale(_ context.Context, s lifecycle.Sale) error {
	if _, exists := t.st.sales[s.ID]; exists {
		return apperr.Conflict("sale %s already exists", s.ID)
	}
	t.st.sales[s.ID] = s
	return nil
}

func (t *ledgerTx) UpdateSale(_ context.Context, s lifecycle.Sale) error {
	cur, err := t.st.liveSale(s.ID)
	if err != nil {
		return err
	}
	// identidad y auditoría no cambian
	s.AnimalID = cur.AnimalID
	s.OrganizationID = cur.OrganizationID
	s.UserCreatedID = cur.UserCreatedID
	s.CreatedAt = cur.CreatedAt
	s.DeletedAt = nil
	t.st.sales[s.ID] = s
	return nil
}

func (t *ledgerTx) SoftDeleteSale(_ context.Context, id string, at time.Time) error {
	s, err := t.st.liveSale(id)
	if err != nil {
		return err
	}
	s.DeletedAt = &at
	s.UpdatedAt = at
	t.st.sales[id] = s
	return nil
}

func (t *ledgerTx) UpdateAnimalStatus(_ context.Context, id string, status animals.Status, at time.Time) error {
	a, err := t.st.animal(id)
	if err != nil {
		return err
	}
	a.Status = status
	a.UpdatedAt = at
	t.st.animals[id] = a
	return nil
}

func (t *ledgerTx) InsertDeath(_ context.Context, d lifecycle.Death) error {
	if _, exists := t.st.deaths[d.ID]; exists {
		return apperr.Conflict("death %s already exists", d.ID)
	}
	t.st.deaths[d.ID] = d
	return nil
}

func (s *state) liveSale(id string) (lifecycle.Sale, error) {
	sale, ok := s.sales[id]
	if !ok || !liveOnly(sale.DeletedAt) {
		return lifecycle.Sale{}, apperr.NotFound("sale", id)
	}
	return sale, nil
}
