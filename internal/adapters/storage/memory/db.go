package memory

import (
	"context"
	"sync"
	"time"

	"livestock-ledger/internal/domain/animals"
	"livestock-ledger/internal/domain/lifecycle"
	"livestock-ledger/internal/domain/milkings"
	"livestock-ledger/internal/platform/apperr"
)

// DB es el estado compartido por todos los repos en memoria.
//
// Las escrituras trabajan sobre una copia del estado y la publican solo si fn
// no falló y se cumplen las restricciones; así un rollback es simplemente
// descartar la copia. Un solo escritor a la vez (writer); los lectores usan mu.
type DB struct {
	writer chan struct{}

	mu sync.RWMutex
	st state
}

type state struct {
	animals  map[string]animals.Animal
	sales    map[string]lifecycle.Sale
	deaths   map[string]lifecycle.Death
	milkings map[string]milkings.Milking
}

func NewDB() *DB {
	return &DB{
		writer: make(chan struct{}, 1),
		st: state{
			animals:  map[string]animals.Animal{},
			sales:    map[string]lifecycle.Sale{},
			deaths:   map[string]lifecycle.Death{},
			milkings: map[string]milkings.Milking{},
		},
	}
}

func (s state) clone() state {
	return state{
		animals:  cloneMap(s.animals),
		sales:    cloneMap(s.sales),
		deaths:   cloneMap(s.deaths),
		milkings: cloneMap(s.milkings),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// update corre fn sobre una copia y la publica si todo salió bien.
// Esperar el turno de escritura respeta el deadline del ctx.
func (db *DB) update(ctx context.Context, fn func(st *state) error) error {
	select {
	case db.writer <- struct{}{}:
	case <-ctx.Done():
		return apperr.Transient("memory store busy", ctx.Err())
	}
	defer func() { <-db.writer }()

	db.mu.RLock()
	next := db.st.clone()
	db.mu.RUnlock()

	if err := fn(&next); err != nil {
		return err
	}
	if err := next.checkConstraints(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return apperr.Transient("transaction aborted", err)
	}

	db.mu.Lock()
	db.st = next
	db.mu.Unlock()
	return nil
}

// view corre fn sobre el estado publicado; un ctx ya cancelado no lee.
func (db *DB) view(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(&db.st)
}

// checkConstraints replica los índices únicos del esquema SQL:
// una venta viva por animal, una muerte viva por animal, código único por organización.
func (s *state) checkConstraints() error {
	openSale := map[string]string{}
	for _, sale := range s.sales {
		if !liveOnly(sale.DeletedAt) {
			continue
		}
		if other, dup := openSale[sale.AnimalID]; dup {
			return apperr.Conflict("animal %s already has an open sale (%s)", sale.AnimalID, other)
		}
		openSale[sale.AnimalID] = sale.ID
	}

	dead := map[string]struct{}{}
	for _, d := range s.deaths {
		if !liveOnly(d.DeletedAt) {
			continue
		}
		if _, dup := dead[d.AnimalID]; dup {
			return apperr.Conflict("animal %s already has a death record", d.AnimalID)
		}
		dead[d.AnimalID] = struct{}{}
	}

	type orgCode struct{ org, code string }
	codes := map[orgCode]struct{}{}
	for _, a := range s.animals {
		k := orgCode{a.OrganizationID, a.Code}
		if _, dup := codes[k]; dup {
			return apperr.Conflict("animal code %q already exists", a.Code)
		}
		codes[k] = struct{}{}
	}
	return nil
}

// liveOnly es el único predicado de soft-delete del adapter.
func liveOnly(deletedAt *time.Time) bool {
	return deletedAt == nil
}
