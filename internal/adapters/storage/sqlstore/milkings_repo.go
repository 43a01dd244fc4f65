package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"livestock-ledger/internal/domain/milkings"
)

type MilkingsRepo struct {
	db *DB
}

func NewMilkingsRepo(db *DB) *MilkingsRepo {
	return &MilkingsRepo{db: db}
}

func (r *MilkingsRepo) Create(ctx context.Context, m milkings.Milking) error {
	_, err := r.db.sql.ExecContext(ctx, r.db.rebind(`
		INSERT INTO milkings (id, animal_id, organization_id, animal_type_id, quantity, user_created_id, created_at, deleted_at)
		VALUES (?,?,?,?,?,?,?,?)
	`),
		m.ID,
		m.AnimalID,
		m.OrganizationID,
		m.AnimalTypeID,
		m.Quantity,
		m.UserCreatedID,
		m.CreatedAt.UTC(),
		nullTime(m.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert milking: %w", translate(err))
	}
	return nil
}

func (r *MilkingsRepo) ListByAnimal(ctx context.Context, animalID string) ([]milkings.Milking, error) {
	rows, err := r.db.sql.QueryContext(ctx, r.db.rebind(`
		SELECT id, animal_id, organization_id, animal_type_id, quantity, user_created_id, created_at, deleted_at
		FROM milkings
		WHERE animal_id = ? AND `+liveClause("")+`
		ORDER BY created_at, id
	`), animalID)
	if err != nil {
		return nil, fmt.Errorf("list milkings: %w", translate(err))
	}
	defer rows.Close()

	out := make([]milkings.Milking, 0)
	for rows.Next() {
		var (
			m         milkings.Milking
			deletedAt sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.AnimalID, &m.OrganizationID, &m.AnimalTypeID, &m.Quantity, &m.UserCreatedID, &m.CreatedAt, &deletedAt); err != nil {
			return nil, err
		}
		m.CreatedAt = m.CreatedAt.UTC()
		m.DeletedAt = timePtr(deletedAt)
		out = append(out, m)
	}
	return out, rows.Err()
}
