package memory

import (
	"context"
	"fmt"
	"time"

	"livestock-ledger/internal/domain/analytics"

	"github.com/shopspring/decimal"
)

type analyticsRepo struct {
	db *DB
}

func NewAnalyticsRepo(db *DB) analytics.Repository {
	return &analyticsRepo{db: db}
}

func (r *analyticsRepo) Rows(ctx context.Context, f analytics.RowFilter) ([]analytics.Row, error) {
	out := make([]analytics.Row, 0)
	err := r.db.view(ctx, func(st *state) error {
		add := func(at time.Time, org, animalType string, v decimal.Decimal) {
			if at.Before(f.From) || !at.Before(f.To) {
				return
			}
			if f.OrganizationID != "" && org != f.OrganizationID {
				return
			}
			if f.AnimalTypeID != "" && animalType != f.AnimalTypeID {
				return
			}
			out = append(out, analytics.Row{CreatedAt: at, OrganizationID: org, AnimalTypeID: animalType, Value: v})
		}

		switch f.Source {
		case analytics.SourceDeaths:
			for _, d := range st.deaths {
				if liveOnly(d.DeletedAt) {
					add(d.CreatedAt, d.OrganizationID, d.AnimalTypeID, decimal.NewFromInt(int64(d.Number)))
				}
			}
		case analytics.SourceMilk:
			for _, m := range st.milkings {
				if liveOnly(m.DeletedAt) {
					add(m.CreatedAt, m.OrganizationID, m.AnimalTypeID, m.Quantity)
				}
			}
		case analytics.SourceSales:
			for _, s := range st.sales {
				if !liveOnly(s.DeletedAt) {
					continue
				}
				a := st.animals[s.AnimalID]
				add(s.Date, s.OrganizationID, a.AnimalTypeID, s.Price)
			}
		default:
			return fmt.Errorf("unknown analytics source %q", f.Source)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
