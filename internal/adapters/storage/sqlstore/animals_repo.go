package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"livestock-ledger/internal/domain/animals"
	"livestock-ledger/internal/platform/apperr"
)

type AnimalsRepo struct {
	db *DB
}

func NewAnimalsRepo(db *DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `id, code, organization_id, animal_type_id, gender, status, created_at, updated_at`

// queryer es lo común entre *sql.DB y *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	_, err := r.db.sql.ExecContext(ctx, r.db.rebind(`
		INSERT INTO animals (`+animalColumns+`)
		VALUES (?,?,?,?,?,?,?,?)
	`),
		a.ID,
		a.Code,
		a.OrganizationID,
		a.AnimalTypeID,
		string(a.Gender),
		string(a.Status),
		a.CreatedAt.UTC(),
		a.UpdatedAt.UTC(),
	)
	if err != nil {
		err = translate(err)
		if apperr.IsConflict(err) {
			return apperr.Conflict("animal code %q already exists", a.Code)
		}
		return fmt.Errorf("insert animal: %w", err)
	}
	return nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	return getAnimal(ctx, r.db, r.db.sql, id)
}

func (r *AnimalsRepo) GetByCode(ctx context.Context, organizationID, code string) (animals.Animal, error) {
	return getAnimalByCode(ctx, r.db, r.db.sql, organizationID, code)
}

func (r *AnimalsRepo) List(ctx context.Context, f animals.ListFilter) ([]animals.Animal, error) {
	w := where{}.
		eq("organization_id", f.OrganizationID).
		eq("animal_type_id", f.AnimalTypeID).
		eq("status", string(f.Status))

	rows, err := r.db.sql.QueryContext(ctx, r.db.rebind(`SELECT `+animalColumns+` FROM animals`+w.String()+` ORDER BY organization_id, code`), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list animals: %w", translate(err))
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func getAnimal(ctx context.Context, db *DB, q queryer, id string) (animals.Animal, error) {
	a, err := scanAnimal(q.QueryRowContext(ctx, db.rebind(`SELECT `+animalColumns+` FROM animals WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return animals.Animal{}, apperr.NotFound("animal", id)
	}
	if err != nil {
		return animals.Animal{}, translate(err)
	}
	return a, nil
}

func getAnimalByCode(ctx context.Context, db *DB, q queryer, organizationID, code string) (animals.Animal, error) {
	a, err := scanAnimal(q.QueryRowContext(ctx, db.rebind(`SELECT `+animalColumns+` FROM animals WHERE organization_id = ? AND code = ?`), organizationID, code))
	if errors.Is(err, sql.ErrNoRows) {
		return animals.Animal{}, apperr.NotFound("animal", code)
	}
	if err != nil {
		return animals.Animal{}, translate(err)
	}
	return a, nil
}

func scanAnimal(s scanner) (animals.Animal, error) {
	var (
		a              animals.Animal
		gender, status string
	)
	if err := s.Scan(&a.ID, &a.Code, &a.OrganizationID, &a.AnimalTypeID, &gender, &status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return animals.Animal{}, err
	}
	a.Gender = animals.Gender(gender)
	a.Status = animals.Status(status)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}
