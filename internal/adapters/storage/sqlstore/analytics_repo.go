package sqlstore

import (
	"context"
	"fmt"

	"livestock-ledger/internal/domain/analytics"

	"github.com/shopspring/decimal"
)

type AnalyticsRepo struct {
	db *DB
}

func NewAnalyticsRepo(db *DB) *AnalyticsRepo {
	return &AnalyticsRepo{db: db}
}

// Una fila por registro; la agregación la hace analytics.Aggregate.
func (r *AnalyticsRepo) Rows(ctx context.Context, f analytics.RowFilter) ([]analytics.Row, error) {
	var (
		query string
		w     where
	)
	switch f.Source {
	case analytics.SourceDeaths:
		w = where{}.raw(liveClause("")).
			raw("created_at >= ?", f.From.UTC()).
			raw("created_at < ?", f.To.UTC()).
			eq("organization_id", f.OrganizationID).
			eq("animal_type_id", f.AnimalTypeID)
		query = `SELECT created_at, organization_id, animal_type_id, number FROM deaths` + w.String()

	case analytics.SourceMilk:
		w = where{}.raw(liveClause("")).
			raw("created_at >= ?", f.From.UTC()).
			raw("created_at < ?", f.To.UTC()).
			eq("organization_id", f.OrganizationID).
			eq("animal_type_id", f.AnimalTypeID)
		query = `SELECT created_at, organization_id, animal_type_id, quantity FROM milkings` + w.String()

	case analytics.SourceSales:
		w = where{}.raw(liveClause("s")).
			raw("s.date >= ?", f.From.UTC()).
			raw("s.date < ?", f.To.UTC()).
			eq("s.organization_id", f.OrganizationID).
			eq("a.animal_type_id", f.AnimalTypeID)
		query = `SELECT s.date, s.organization_id, a.animal_type_id, s.price FROM sales s JOIN animals a ON a.id = s.animal_id` + w.String()

	default:
		return nil, fmt.Errorf("unknown analytics source %q", f.Source)
	}

	rows, err := r.db.sql.QueryContext(ctx, r.db.rebind(query), w.args...)
	if err != nil {
		return nil, fmt.Errorf("query %s rows: %w", f.Source, translate(err))
	}
	defer rows.Close()

	out := make([]analytics.Row, 0)
	for rows.Next() {
		var row analytics.Row
		if f.Source == analytics.SourceDeaths {
			var n int64
			if err := rows.Scan(&row.CreatedAt, &row.OrganizationID, &row.AnimalTypeID, &n); err != nil {
				return nil, err
			}
			row.Value = decimal.NewFromInt(n)
		} else {
			if err := rows.Scan(&row.CreatedAt, &row.OrganizationID, &row.AnimalTypeID, &row.Value); err != nil {
				return nil, err
			}
		}
		row.CreatedAt = row.CreatedAt.UTC()
		out = append(out, row)
	}
	return out, rows.Err()
}
