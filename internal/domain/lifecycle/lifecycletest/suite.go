// Package lifecycletest contiene la batería de tests que todo lifecycle.Store debe pasar.
// Cada adapter la corre con su propio Fixture.
package lifecycletest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"livestock-ledger/internal/domain/animals"
	"livestock-ledger/internal/domain/lifecycle"
	"livestock-ledger/internal/platform/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixture: stores vacíos que comparten el mismo backend.
type Fixture struct {
	Store   lifecycle.Store
	Animals animals.Repository
}

type harness struct {
	t       *testing.T
	ctx     context.Context
	fx      Fixture
	svc     *lifecycle.Service
	animals *animals.Service
}

func newHarness(t *testing.T, newFixture func(t *testing.T) Fixture) *harness {
	t.Helper()
	fx := newFixture(t)
	return &harness{
		t:       t,
		ctx:     context.Background(),
		fx:      fx,
		svc:     lifecycle.NewService(fx.Store, lifecycle.WithTxTimeout(10*time.Second)),
		animals: animals.NewService(fx.Animals),
	}
}

func (h *harness) animal(code, gender string) animals.Animal {
	h.t.Helper()
	a, err := h.animals.Create(h.ctx, animals.CreateInput{
		Code:           code,
		OrganizationID: "org-1",
		AnimalTypeID:   "cattle",
		Gender:         gender,
	})
	require.NoError(h.t, err)
	return a
}

func (h *harness) status(id string) animals.Status {
	h.t.Helper()
	a, err := h.fx.Animals.GetByID(h.ctx, id)
	require.NoError(h.t, err)
	return a.Status
}

func (h *harness) sales(animalID string) []lifecycle.Sale {
	h.t.Helper()
	out, err := h.svc.ListSales(h.ctx, lifecycle.SaleFilter{AnimalID: animalID, IncludeDeleted: true})
	require.NoError(h.t, err)
	return out
}

func (h *harness) deaths(animalID string) []lifecycle.Death {
	h.t.Helper()
	out, err := h.svc.ListDeaths(h.ctx, lifecycle.DeathFilter{AnimalID: animalID})
	require.NoError(h.t, err)
	return out
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// Run ejecuta la batería completa contra el adapter.
func Run(t *testing.T, newFixture func(t *testing.T) Fixture) {
	t.Run("ConcurrentRecordSaleHasOneWinner", func(t *testing.T) {
		h := newHarness(t, newFixture)
		a := h.animal("C-1", "female")

		const workers = 12
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			ok        int
			conflicts int
			others    []error
		)
		start := make(chan struct{})
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, err := h.svc.RecordSale(h.ctx, a.ID, lifecycle.SaleInput{Price: price(fmt.Sprintf("%d.00", 100+i)), UserID: "u-1"})

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case apperr.IsConflict(err):
					conflicts++
				default:
					others = append(others, err)
				}
			}(i)
		}
		close(start)
		wg.Wait()

		require.Empty(t, others)
		assert.Equal(t, 1, ok)
		assert.Equal(t, workers-1, conflicts)
		assert.Len(t, h.sales(a.ID), 1)
		assert.Equal(t, animals.StatusSold, h.status(a.ID))
	})

	t.Run("RecordSaleOnSoldAnimalChangesNothing", func(t *testing.T) {
		h := newHarness(t, newFixture)
		a := h.animal("C-1", "male")

		first, err := h.svc.RecordSale(h.ctx, a.ID, lifecycle.SaleInput{Price: price("250"), UserID: "u-1"})
		require.NoError(t, err)
		assert.Equal(t, lifecycle.SaleActive, first.Status)

		_, err = h.svc.RecordSale(h.ctx, a.ID, lifecycle.SaleInput{Price: price("300"), UserID: "u-2"})
		assert.True(t, apperr.IsConflict(err), "got %v", err)

		assert.Equal(t, animals.StatusSold, h.status(a.ID))
		sales := h.sales(a.ID)
		require.Len(t, sales, 1)
		assert.Equal(t, first.ID, sales[0].ID)
		assert.Nil(t, sales[0].DeletedAt)
		assert.True(t, sales[0].Price.Equal(decimal.NewFromInt(250)))
		assert.Empty(t, h.deaths(a.ID))
	})

	t.Run("DeadTransitionIsAtomic", func(t *testing.T) {
		h := newHarness(t, newFixture)
		a := h.animal("C-1", "female")

		sale, err := h.svc.RecordSale(h.ctx, a.ID, lifecycle.SaleInput{UserID: "u-1"})
		require.NoError(t, err)

		require.NoError(t, h.svc.UpdateSaleStatus(h.ctx, sale.ID, animals.StatusDead, lifecycle.SaleInput{UserID: "u-2"}))

		assert.Equal(t, animals.StatusDead, h.status(a.ID))

		deaths := h.deaths(a.ID)
		require.Len(t, deaths, 1)
		assert.Equal(t, "org-1", deaths[0].OrganizationID)
		assert.Equal(t, "cattle", deaths[0].AnimalTypeID)
		assert.Equal(t, "u-2", deaths[0].UserCreatedID)
		assert.Equal(t, 1, deaths[0].Number)
		assert.Equal(t, 1, deaths[0].Female)
		assert.Equal(t, 0, deaths[0].Male)

		_, err = h.svc.GetSale(h.ctx, sale.ID)
		assert.True(t, apperr.IsNotFound(err))
		sales := h.sales(a.ID)
		require.Len(t, sales, 1)
		assert.NotNil(t, sales[0].DeletedAt)

		// DEAD es terminal
		_, err = h.svc.RecordSale(h.ctx, a.ID, lifecycle.SaleInput{UserID: "u-1"})
		assert.True(t, apperr.IsConflict(err))
		err = h.svc.UpdateSaleStatus(h.ctx, sale.ID, animals.StatusActive, lifecycle.SaleInput{})
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("ReversalToActiveRoundTrip", func(t *testing.T) {
		h := newHarness(t, newFixture)
		a := h.animal("C-1", "unknown")

		sale, err := h.svc.RecordSale(h.ctx, a.ID, lifecycle.SaleInput{UserID: "u-1"})
		require.NoError(t, err)
		require.NoError(t, h.svc.UpdateSaleStatus(h.ctx, sale.ID, animals.StatusActive, lifecycle.SaleInput{}))

		assert.Equal(t, animals.StatusActive, h.status(a.ID))
		assert.Empty(t, h.deaths(a.ID))

		live, err := h.svc.ListSales(h.ctx, lifecycle.SaleFilter{AnimalID: a.ID})
		require.NoError(t, err)
		assert.Empty(t, live)

		all := h.sales(a.ID)
		require.Len(t, all, 1)
		assert.NotNil(t, all[0].DeletedAt)
		assert.Equal(t, lifecycle.SaleActive, all[0].Status)

		// se puede volver a vender
		again, err := h.svc.RecordSale(h.ctx, a.ID, lifecycle.SaleInput{UserID: "u-1"})
		require.NoError(t, err)
		assert.NotEqual(t, sale.ID, again.ID)
		assert.Equal(t, animals.StatusSold, h.status(a.ID))
	})

	t.Run("ConfirmSoldIsIdempotent", func(t *testing.T) {
		h := newHarness(t, newFixture)
		a := h.animal("C-1", "male")

		sale, err := h.svc.RecordSale(h.ctx, a.ID, lifecycle.SaleInput{Price: price("10"), UserID: "u-1"})
		require.NoError(t, err)

		buyer := "Feedlot SA"
		for i := 0; i < 2; i++ {
			require.NoError(t, h.svc.UpdateSaleStatus(h.ctx, sale.ID, animals.StatusSold, lifecycle.SaleInput{Price: price("12.50"), SoldTo: &buyer}))
		}

		got, err := h.svc.GetSale(h.ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, lifecycle.SaleSold, got.Status)
		assert.Equal(t, buyer, got.SoldTo)
		assert.True(t, got.Price.Equal(decimal.RequireFromString("12.5")), "price %s", got.Price)
		assert.Equal(t, "u-1", got.UserCreatedID)
		assert.Equal(t, animals.StatusSold, h.status(a.ID))
		assert.Len(t, h.sales(a.ID), 1)
	})

	t.Run("BulkSaleIsAllOrNothing", func(t *testing.T) {
		h := newHarness(t, newFixture)
		a := h.animal("A-1", "male")
		b := h.animal("B-1", "female")
		c := h.animal("C-1", "female")

		_, err := h.svc.RecordSale(h.ctx, b.ID, lifecycle.SaleInput{UserID: "u-1"})
		require.NoError(t, err)

		_, err = h.svc.RecordBulkSale(h.ctx, "org-1", []string{"A-1", "B-1", "C-1"}, lifecycle.SaleInput{UserID: "u-1"})
		require.Error(t, err)
		assert.True(t, apperr.IsConflict(err))
		assert.Contains(t, err.Error(), `"B-1"`)

		assert.Equal(t, animals.StatusActive, h.status(a.ID))
		assert.Equal(t, animals.StatusActive, h.status(c.ID))
		assert.Empty(t, h.sales(a.ID))
		assert.Empty(t, h.sales(c.ID))

		_, err = h.svc.RecordBulkSale(h.ctx, "org-1", []string{"A-1", "missing"}, lifecycle.SaleInput{UserID: "u-1"})
		assert.True(t, apperr.IsNotFound(err))
		assert.Empty(t, h.sales(a.ID))

		sold, err := h.svc.RecordBulkSale(h.ctx, "org-1", []string{"A-1", "C-1"}, lifecycle.SaleInput{Price: price("99.90"), UserID: "u-1"})
		require.NoError(t, err)
		require.Len(t, sold, 2)
		assert.Equal(t, a.ID, sold[0].AnimalID)
		assert.Equal(t, c.ID, sold[1].AnimalID)
		assert.Equal(t, animals.StatusSold, h.status(a.ID))
		assert.Equal(t, animals.StatusSold, h.status(c.ID))
	})

	t.Run("NotFound", func(t *testing.T) {
		h := newHarness(t, newFixture)

		_, err := h.svc.RecordSale(h.ctx, "no-such-animal", lifecycle.SaleInput{})
		assert.True(t, apperr.IsNotFound(err))

		err = h.svc.UpdateSaleStatus(h.ctx, "no-such-sale", animals.StatusSold, lifecycle.SaleInput{})
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("ListFilters", func(t *testing.T) {
		h := newHarness(t, newFixture)
		a := h.animal("A-1", "male")
		b := h.animal("B-1", "male")

		sa, err := h.svc.RecordSale(h.ctx, a.ID, lifecycle.SaleInput{UserID: "u-1"})
		require.NoError(t, err)
		_, err = h.svc.RecordSale(h.ctx, b.ID, lifecycle.SaleInput{UserID: "u-1"})
		require.NoError(t, err)
		require.NoError(t, h.svc.UpdateSaleStatus(h.ctx, sa.ID, animals.StatusSold, lifecycle.SaleInput{}))

		byOrg, err := h.svc.ListSales(h.ctx, lifecycle.SaleFilter{OrganizationID: "org-1"})
		require.NoError(t, err)
		assert.Len(t, byOrg, 2)

		confirmed, err := h.svc.ListSales(h.ctx, lifecycle.SaleFilter{OrganizationID: "org-1", Status: lifecycle.SaleSold})
		require.NoError(t, err)
		require.Len(t, confirmed, 1)
		assert.Equal(t, sa.ID, confirmed[0].ID)

		other, err := h.svc.ListSales(h.ctx, lifecycle.SaleFilter{OrganizationID: "org-2"})
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}
