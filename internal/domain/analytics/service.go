package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"livestock-ledger/internal/platform/apperr"
	"livestock-ledger/internal/platform/logger"
	"livestock-ledger/internal/platform/metrics"
)

// Service es de solo lectura y no guarda estado entre llamadas.
type Service struct {
	repo    Repository
	now     func() time.Time
	log     logger.Logger
	metrics *metrics.Registry
}

func NewService(repo Repository, log logger.Logger, m *metrics.Registry) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		now:     time.Now,
		log:     log,
		metrics: m,
	}
}

// Report es la respuesta completa de una consulta de analytics.
type Report struct {
	Source      Source
	Mode        Mode
	Granularity Granularity
	From        time.Time
	To          time.Time // exclusivo
	Series      []Series
}

func (s *Service) Series(ctx context.Context, source Source, spec PeriodSpec, dims Dimensions) (Report, error) {
	if !source.Valid() {
		return Report{}, apperr.Invalid("source", fmt.Sprintf("unknown source %q", source))
	}
	rng, err := spec.Resolve(s.now())
	if err != nil {
		return Report{}, err
	}

	dims = Dimensions{
		OrganizationID: strings.TrimSpace(dims.OrganizationID),
		AnimalTypeID:   strings.TrimSpace(dims.AnimalTypeID),
	}
	rows, err := s.repo.Rows(ctx, RowFilter{
		Source:         source,
		From:           rng.Start,
		To:             rng.End,
		OrganizationID: dims.OrganizationID,
		AnimalTypeID:   dims.AnimalTypeID,
	})
	if err != nil {
		return Report{}, fmt.Errorf("load %s rows: %w", source, err)
	}

	s.metrics.ObserveAnalytics(string(source), string(rng.Mode))
	s.log.Debug("analytics series", map[string]any{
		"source": string(source),
		"mode":   string(rng.Mode),
		"from":   rng.Start.Format("2006-01-02"),
		"rows":   len(rows),
	})

	return Report{
		Source:      source,
		Mode:        rng.Mode,
		Granularity: rng.Granularity,
		From:        rng.Start,
		To:          rng.End,
		Series:      Aggregate(rows, rng, dims),
	}, nil
}
