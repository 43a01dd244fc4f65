package lifecycle_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"livestock-ledger/internal/adapters/storage/memory"
	"livestock-ledger/internal/domain/animals"
	"livestock-ledger/internal/domain/lifecycle"
	"livestock-ledger/internal/platform/apperr"
	"livestock-ledger/internal/platform/logger"
	"livestock-ledger/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stallingStore no termina la transacción hasta que vence el ctx.
type stallingStore struct {
	lifecycle.Store
	calls int
}

func (s *stallingStore) WithinTx(ctx context.Context, _ func(lifecycle.Tx) error) error {
	s.calls++
	<-ctx.Done()
	return ctx.Err()
}

func seed(t *testing.T, db *memory.DB, code string) animals.Animal {
	t.Helper()
	a, err := animals.NewService(memory.NewAnimalsRepo(db)).Create(context.Background(), animals.CreateInput{
		Code:           code,
		OrganizationID: "org-1",
		AnimalTypeID:   "cattle",
		Gender:         "male",
	})
	require.NoError(t, err)
	return a
}

func TestRecordSale_TxTimeoutIsRetryableConflict(t *testing.T) {
	store := &stallingStore{}
	svc := lifecycle.NewService(store, lifecycle.WithTxTimeout(10*time.Millisecond))

	_, err := svc.RecordSale(context.Background(), "a1", lifecycle.SaleInput{})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.True(t, apperr.IsRetryable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, store.calls)
}

func TestValidationHappensBeforeStore(t *testing.T) {
	store := &stallingStore{}
	svc := lifecycle.NewService(store)
	ctx := context.Background()
	neg := decimal.NewFromInt(-1)

	_, err := svc.RecordSale(ctx, " ", lifecycle.SaleInput{})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.RecordSale(ctx, "a1", lifecycle.SaleInput{Price: &neg})
	assert.True(t, apperr.IsValidation(err))

	err = svc.UpdateSaleStatus(ctx, "s1", "LOST", lifecycle.SaleInput{})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.RecordBulkSale(ctx, "org-1", []string{"A", "B", "A"}, lifecycle.SaleInput{})
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), `"A"`)

	_, err = svc.RecordBulkSale(ctx, "org-1", nil, lifecycle.SaleInput{})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.RecordBulkSale(ctx, "", []string{"A"}, lifecycle.SaleInput{})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.ListSales(ctx, lifecycle.SaleFilter{Status: "GONE"})
	assert.True(t, apperr.IsValidation(err))

	assert.Zero(t, store.calls)
}

func TestRecordSale_AppliesInputAndDefaults(t *testing.T) {
	db := memory.NewDB()
	a := seed(t, db, "C-1")
	svc := lifecycle.NewService(memory.NewLedgerStore(db))

	date := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	buyer := "  Frigorífico Norte "
	price := decimal.RequireFromString("1530.75")
	sale, err := svc.RecordSale(context.Background(), a.ID, lifecycle.SaleInput{
		Date:   &date,
		Price:  &price,
		SoldTo: &buyer,
		UserID: "u-7",
	})
	require.NoError(t, err)

	assert.Equal(t, lifecycle.SaleActive, sale.Status)
	assert.Equal(t, date, sale.Date)
	assert.Equal(t, "Frigorífico Norte", sale.SoldTo)
	assert.Equal(t, "org-1", sale.OrganizationID)
	assert.Equal(t, "u-7", sale.UserCreatedID)
	assert.True(t, sale.Price.Equal(price))

	// sin precio ni fecha: cero y "ahora"
	b := seed(t, db, "C-2")
	sale, err = svc.RecordSale(context.Background(), b.ID, lifecycle.SaleInput{})
	require.NoError(t, err)
	assert.True(t, sale.Price.IsZero())
	assert.WithinDuration(t, time.Now(), sale.Date, time.Minute)
}

func TestMetricsAndLogsPerOutcome(t *testing.T) {
	db := memory.NewDB()
	a := seed(t, db, "C-1")

	var buf bytes.Buffer
	reg := metrics.New()
	svc := lifecycle.NewService(memory.NewLedgerStore(db),
		lifecycle.WithMetrics(reg),
		lifecycle.WithLogger(logger.New(logger.Options{Level: logger.Debug, Output: &buf})),
	)

	_, err := svc.RecordSale(context.Background(), a.ID, lifecycle.SaleInput{})
	require.NoError(t, err)
	_, err = svc.RecordSale(context.Background(), a.ID, lifecycle.SaleInput{})
	require.Error(t, err)
	_, err = svc.RecordSale(context.Background(), "ghost", lifecycle.SaleInput{})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.LifecycleOps.WithLabelValues("record_sale", metrics.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.LifecycleOps.WithLabelValues("record_sale", metrics.OutcomeConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.LifecycleOps.WithLabelValues("record_sale", metrics.OutcomeNotFound)))

	out := buf.String()
	assert.Contains(t, out, "msg=lifecycle transition ")
	assert.Contains(t, out, "level=warn")
	assert.Contains(t, out, "already sold")
}
