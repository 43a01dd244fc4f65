package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"livestock-ledger/internal/domain/animals"
	"livestock-ledger/internal/platform/apperr"
	"livestock-ledger/internal/platform/logger"
	"livestock-ledger/internal/platform/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	opRecordSale       = "record_sale"
	opUpdateSaleStatus = "update_sale_status"
	opRecordBulkSale   = "record_bulk_sale"
)

// Service es la máquina de estados del animal (ACTIVE -> SOLD -> ACTIVE | DEAD).
// Es el único lugar que cambia animals.Animal.Status.
type Service struct {
	store   Store
	now     func() time.Time
	log     logger.Logger
	metrics *metrics.Registry

	txTimeout time.Duration
}

type Option func(*Service)

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.Registry) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTxTimeout acota cada transacción; 0 = sin límite propio (solo el del ctx).
func WithTxTimeout(d time.Duration) Option {
	return func(s *Service) { s.txTimeout = d }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordSale crea una venta ACTIVE y pasa el animal a SOLD en la misma transacción.
func (s *Service) RecordSale(ctx context.Context, animalID string, in SaleInput) (Sale, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return Sale{}, apperr.Invalid("animalId", "required")
	}
	if err := validateSaleInput(in); err != nil {
		return Sale{}, err
	}

	var out Sale
	err := s.withinTx(ctx, func(tx Tx) error {
		a, err := tx.GetAnimal(ctx, animalID)
		if err != nil {
			return err
		}
		out, err = s.sellTx(ctx, tx, a, in)
		return err
	})
	s.observe(opRecordSale, err, map[string]any{"animal_id": animalID})
	if err != nil {
		return Sale{}, err
	}
	return out, nil
}

// RecordBulkSale vende todos los códigos en una sola transacción: el primer
// código que falla aborta el lote completo y no se confirma nada.
func (s *Service) RecordBulkSale(ctx context.Context, organizationID string, codes []string, in SaleInput) ([]Sale, error) {
	organizationID = strings.TrimSpace(organizationID)
	if organizationID == "" {
		return nil, apperr.Invalid("organizationId", "required")
	}
	if len(codes) == 0 {
		return nil, apperr.Invalid("codes", "at least one animal code is required")
	}

	clean := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, apperr.Invalid("codes", "empty animal code")
		}
		if _, dup := seen[c]; dup {
			return nil, apperr.Invalid("codes", fmt.Sprintf("duplicate animal code %q", c))
		}
		seen[c] = struct{}{}
		clean = append(clean, c)
	}
	if err := validateSaleInput(in); err != nil {
		return nil, err
	}

	var out []Sale
	err := s.withinTx(ctx, func(tx Tx) error {
		out = make([]Sale, 0, len(clean))
		for _, code := range clean {
			a, err := tx.GetAnimalByCode(ctx, organizationID, code)
			if err != nil {
				return fmt.Errorf("animal code %q: %w", code, err)
			}
			sale, err := s.sellTx(ctx, tx, a, in)
			if err != nil {
				return fmt.Errorf("animal code %q: %w", code, err)
			}
			out = append(out, sale)
		}
		return nil
	})
	s.observe(opRecordBulkSale, err, map[string]any{
		"organization_id": organizationID,
		"count":           len(clean),
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateSaleStatus aplica la transición pedida sobre el animal de la venta:
//   - SOLD: actualiza la venta, la marca SOLD y deja el animal en SOLD.
//   - ACTIVE: reversa; soft-delete de la venta y animal a ACTIVE, sin muerte.
//   - DEAD: inserta la muerte, soft-delete de la venta y animal a DEAD.
func (s *Service) UpdateSaleStatus(ctx context.Context, saleID string, newStatus animals.Status, in SaleInput) error {
	saleID = strings.TrimSpace(saleID)
	if saleID == "" {
		return apperr.Invalid("saleId", "required")
	}
	if !newStatus.Valid() {
		return apperr.Invalid("status", fmt.Sprintf("unknown status %q", newStatus))
	}
	if err := validateSaleInput(in); err != nil {
		return err
	}

	var animalID string
	err := s.withinTx(ctx, func(tx Tx) error {
		sale, err := tx.GetSale(ctx, saleID)
		if err != nil {
			return err
		}
		a, err := tx.GetAnimal(ctx, sale.AnimalID)
		if err != nil {
			return err
		}
		animalID = a.ID
		if a.Status == animals.StatusDead {
			return apperr.Conflict("animal %s is dead", a.ID)
		}

		now := s.now().UTC()
		switch newStatus {
		case animals.StatusSold:
			applySaleInput(&sale, in)
			sale.Status = SaleSold
			sale.UpdatedAt = now
			if err := tx.UpdateSale(ctx, sale); err != nil {
				return err
			}
			if a.Status != animals.StatusSold {
				return tx.UpdateAnimalStatus(ctx, a.ID, animals.StatusSold, now)
			}
			return nil

		case animals.StatusActive:
			if err := tx.SoftDeleteSale(ctx, sale.ID, now); err != nil {
				return err
			}
			return tx.UpdateAnimalStatus(ctx, a.ID, animals.StatusActive, now)

		default: // DEAD
			if err := tx.InsertDeath(ctx, deathFor(a, in.UserID, uuid.NewString(), now)); err != nil {
				return err
			}
			if err := tx.SoftDeleteSale(ctx, sale.ID, now); err != nil {
				return err
			}
			return tx.UpdateAnimalStatus(ctx, a.ID, animals.StatusDead, now)
		}
	})
	s.observe(opUpdateSaleStatus, err, map[string]any{
		"sale_id":   saleID,
		"animal_id": animalID,
		"status":    string(newStatus),
	})
	return err
}

func (s *Service) GetSale(ctx context.Context, id string) (Sale, error) {
	if strings.TrimSpace(id) == "" {
		return Sale{}, apperr.Invalid("saleId", "required")
	}
	return s.store.GetSale(ctx, id)
}

func (s *Service) ListSales(ctx context.Context, f SaleFilter) ([]Sale, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Invalid("status", fmt.Sprintf("unknown sale status %q", f.Status))
	}
	return s.store.ListSales(ctx, f)
}

func (s *Service) ListDeaths(ctx context.Context, f DeathFilter) ([]Death, error) {
	return s.store.ListDeaths(ctx, f)
}

// sellTx: precondiciones y escrituras de una venta, dentro de una transacción abierta.
func (s *Service) sellTx(ctx context.Context, tx Tx, a animals.Animal, in SaleInput) (Sale, error) {
	switch a.Status {
	case animals.StatusSold:
		return Sale{}, apperr.Conflict("animal %s is already sold", a.ID)
	case animals.StatusDead:
		return Sale{}, apperr.Conflict("animal %s is dead", a.ID)
	}

	if _, open, err := tx.GetOpenSaleForAnimal(ctx, a.ID); err != nil {
		return Sale{}, err
	} else if open {
		return Sale{}, apperr.Conflict("animal %s already has an open sale", a.ID)
	}

	now := s.now().UTC()
	sale := Sale{
		ID:             uuid.NewString(),
		AnimalID:       a.ID,
		OrganizationID: a.OrganizationID,
		Status:         SaleActive,
		Date:           now,
		Price:          decimal.Zero,
		UserCreatedID:  in.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	applySaleInput(&sale, in)

	if err := tx.InsertSale(ctx, sale); err != nil {
		return Sale{}, err
	}
	if err := tx.UpdateAnimalStatus(ctx, a.ID, animals.StatusSold, now); err != nil {
		return Sale{}, err
	}
	return sale, nil
}

func (s *Service) withinTx(ctx context.Context, fn func(tx Tx) error) error {
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	err := s.store.WithinTx(ctx, fn)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !apperr.IsConflict(err) {
		return apperr.Transient("ledger transaction timed out", err)
	}
	return err
}

func (s *Service) observe(op string, err error, fields map[string]any) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case apperr.IsConflict(err):
		outcome = metrics.OutcomeConflict
	case apperr.IsNotFound(err):
		outcome = metrics.OutcomeNotFound
	case apperr.IsValidation(err):
		outcome = metrics.OutcomeInvalid
	default:
		outcome = metrics.OutcomeError
	}
	s.metrics.ObserveLifecycle(op, outcome)

	fields["op"] = op
	fields["outcome"] = outcome
	switch outcome {
	case metrics.OutcomeOK:
		s.log.Info("lifecycle transition", fields)
	case metrics.OutcomeError:
		fields["error"] = err
		s.log.Error("lifecycle transition failed", fields)
	default:
		fields["error"] = err
		s.log.Warn("lifecycle transition rejected", fields)
	}
}

func validateSaleInput(in SaleInput) error {
	if in.Price != nil && in.Price.IsNegative() {
		return apperr.Invalid("price", "must not be negative")
	}
	if in.Date != nil && in.Date.IsZero() {
		return apperr.Invalid("date", "must be a valid date")
	}
	return nil
}

func applySaleInput(sale *Sale, in SaleInput) {
	if in.Date != nil {
		sale.Date = in.Date.UTC()
	}
	if in.Price != nil {
		sale.Price = *in.Price
	}
	if in.SoldTo != nil {
		sale.SoldTo = strings.TrimSpace(*in.SoldTo)
	}
	if in.Note != nil {
		sale.Note = strings.TrimSpace(*in.Note)
	}
}
