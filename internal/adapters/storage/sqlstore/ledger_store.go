package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"livestock-ledger/internal/domain/animals"
	"livestock-ledger/internal/domain/lifecycle"
	"livestock-ledger/internal/platform/apperr"
)

type LedgerStore struct {
	db *DB
}

func NewLedgerStore(db *DB) *LedgerStore {
	return &LedgerStore{db: db}
}

const saleColumns = `id, animal_id, organization_id, status, date, price, sold_to, note, user_created_id, created_at, updated_at, deleted_at`

const deathColumns = `id, animal_id, organization_id, animal_type_id, number, male, female, user_created_id, created_at, deleted_at`

// WithinTx: BEGIN, fn, COMMIT. Cualquier error de fn hace rollback.
func (s *LedgerStore) WithinTx(ctx context.Context, fn func(tx lifecycle.Tx) error) error {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return translate(fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&ledgerTx{db: s.db, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return translate(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

func (s *LedgerStore) GetSale(ctx context.Context, id string) (lifecycle.Sale, error) {
	return getLiveSale(ctx, s.db, s.db.sql, id)
}

func (s *LedgerStore) ListSales(ctx context.Context, f lifecycle.SaleFilter) ([]lifecycle.Sale, error) {
	w := where{}.
		eq("animal_id", f.AnimalID).
		eq("organization_id", f.OrganizationID).
		eq("status", string(f.Status))
	if !f.IncludeDeleted {
		w = w.raw(liveClause(""))
	}

	rows, err := s.db.sql.QueryContext(ctx, s.db.rebind(`SELECT `+saleColumns+` FROM sales`+w.String()+` ORDER BY created_at, id`), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", translate(err))
	}
	defer rows.Close()

	out := make([]lifecycle.Sale, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	return out, rows.Err()
}

func (s *LedgerStore) ListDeaths(ctx context.Context, f lifecycle.DeathFilter) ([]lifecycle.Death, error) {
	w := where{}.
		eq("animal_id", f.AnimalID).
		eq("organization_id", f.OrganizationID).
		eq("animal_type_id", f.AnimalTypeID).
		raw(liveClause(""))

	rows, err := s.db.sql.QueryContext(ctx, s.db.rebind(`SELECT `+deathColumns+` FROM deaths`+w.String()+` ORDER BY created_at, id`), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list deaths: %w", translate(err))
	}
	defer rows.Close()

	out := make([]lifecycle.Death, 0)
	for rows.Next() {
		var (
			d         lifecycle.Death
			deletedAt sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.AnimalID, &d.OrganizationID, &d.AnimalTypeID, &d.Number, &d.Male, &d.Female, &d.UserCreatedID, &d.CreatedAt, &deletedAt); err != nil {
			return nil, err
		}
		d.CreatedAt = d.CreatedAt.UTC()
		d.DeletedAt = timePtr(deletedAt)
		out = append(out, d)
	}
	return out, rows.Err()
}

type ledgerTx struct {
	db *DB
	tx *sql.Tx
}

func (t *ledgerTx) GetAnimal(ctx context.Context, id string) (animals.Animal, error) {
	return getAnimal(ctx, t.db, t.tx, id)
}

func (t *ledgerTx) GetAnimalByCode(ctx context.Context, organizationID, code string) (animals.Animal, error) {
	return getAnimalByCode(ctx, t.db, t.tx, organizationID, code)
}

func (t *ledgerTx) GetSale(ctx context.Context, id string) (lifecycle.Sale, error) {
	return getLiveSale(ctx, t.db, t.tx, id)
}

func (t *ledgerTx) GetOpenSaleForAnimal(ctx context.Context, animalID string) (lifecycle.Sale, bool, error) {
	sale, err := scanSale(t.tx.QueryRowContext(ctx, t.db.rebind(`SELECT `+saleColumns+` FROM sales WHERE animal_id = ? AND `+liveClause("")), animalID))
	if errors.Is(err, sql.ErrNoRows) {
		return lifecycle.Sale{}, false, nil
	}
	if err != nil {
		return lifecycle.Sale{}, false, translate(err)
	}
	return sale, true, nil
}

func (t *ledgerTx) InsertSale(ctx context.Context, s lifecycle.Sale) error {
	_, err := t.tx.ExecContext(ctx, t.db.rebind(`
		INSERT INTO sales (`+saleColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
	`),
		s.ID,
		s.AnimalID,
		s.OrganizationID,
		string(s.Status),
		s.Date.UTC(),
		s.Price,
		s.SoldTo,
		s.Note,
		s.UserCreatedID,
		s.CreatedAt.UTC(),
		s.UpdatedAt.UTC(),
		nullTime(s.DeletedAt),
	)
	if err != nil {
		err = translate(err)
		if apperr.IsConflict(err) {
			return &apperr.ConflictError{Reason: fmt.Sprintf("animal %s already has an open sale", s.AnimalID), Retryable: true, Err: err}
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (t *ledgerTx) UpdateSale(ctx context.Context, s lifecycle.Sale) error {
	res, err := t.tx.ExecContext(ctx, t.db.rebind(`
		UPDATE sales
		SET status = ?, date = ?, price = ?, sold_to = ?, note = ?, updated_at = ?
		WHERE id = ? AND `+liveClause("")),
		string(s.Status),
		s.Date.UTC(),
		s.Price,
		s.SoldTo,
		s.Note,
		s.UpdatedAt.UTC(),
		s.ID,
	)
	return expectOne(res, err, "sale", s.ID)
}

func (t *ledgerTx) SoftDeleteSale(ctx context.Context, id string, at time.Time) error {
	res, err := t.tx.ExecContext(ctx, t.db.rebind(`
		UPDATE sales SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND `+liveClause("")),
		at.UTC(),
		at.UTC(),
		id,
	)
	return expectOne(res, err, "sale", id)
}

func (t *ledgerTx) UpdateAnimalStatus(ctx context.Context, id string, status animals.Status, at time.Time) error {
	res, err := t.tx.ExecContext(ctx, t.db.rebind(`UPDATE animals SET status = ?, updated_at = ? WHERE id = ?`),
		string(status),
		at.UTC(),
		id,
	)
	return expectOne(res, err, "animal", id)
}

func (t *ledgerTx) InsertDeath(ctx context.Context, d lifecycle.Death) error {
	_, err := t.tx.ExecContext(ctx, t.db.rebind(`
		INSERT INTO deaths (`+deathColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?)
	`),
		d.ID,
		d.AnimalID,
		d.OrganizationID,
		d.AnimalTypeID,
		d.Number,
		d.Male,
		d.Female,
		d.UserCreatedID,
		d.CreatedAt.UTC(),
		nullTime(d.DeletedAt),
	)
	if err != nil {
		err = translate(err)
		if apperr.IsConflict(err) {
			return &apperr.ConflictError{Reason: fmt.Sprintf("animal %s already has a death record", d.AnimalID), Retryable: true, Err: err}
		}
		return fmt.Errorf("insert death: %w", err)
	}
	return nil
}

func getLiveSale(ctx context.Context, db *DB, q queryer, id string) (lifecycle.Sale, error) {
	sale, err := scanSale(q.QueryRowContext(ctx, db.rebind(`SELECT `+saleColumns+` FROM sales WHERE id = ? AND `+liveClause("")), id))
	if errors.Is(err, sql.ErrNoRows) {
		return lifecycle.Sale{}, apperr.NotFound("sale", id)
	}
	if err != nil {
		return lifecycle.Sale{}, translate(err)
	}
	return sale, nil
}

func scanSale(s scanner) (lifecycle.Sale, error) {
	var (
		sale      lifecycle.Sale
		status    string
		deletedAt sql.NullTime
	)
	err := s.Scan(
		&sale.ID,
		&sale.AnimalID,
		&sale.OrganizationID,
		&status,
		&sale.Date,
		&sale.Price,
		&sale.SoldTo,
		&sale.Note,
		&sale.UserCreatedID,
		&sale.CreatedAt,
		&sale.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return lifecycle.Sale{}, err
	}
	sale.Status = lifecycle.SaleStatus(status)
	sale.Date = sale.Date.UTC()
	sale.CreatedAt = sale.CreatedAt.UTC()
	sale.UpdatedAt = sale.UpdatedAt.UTC()
	sale.DeletedAt = timePtr(deletedAt)
	return sale, nil
}

func expectOne(res sql.Result, err error, entity, id string) error {
	if err != nil {
		return fmt.Errorf("update %s: %w", entity, translate(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", entity, err)
	}
	if n == 0 {
		return apperr.NotFound(entity, id)
	}
	return nil
}
