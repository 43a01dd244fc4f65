package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CountsAndExposes(t *testing.T) {
	r := New()

	r.ObserveLifecycle("record_sale", OutcomeOK)
	r.ObserveLifecycle("record_sale", OutcomeConflict)
	r.ObserveLifecycle("record_sale", OutcomeConflict)
	r.ObserveAnalytics("deaths", "year")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.LifecycleOps.WithLabelValues("record_sale", OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.LifecycleOps.WithLabelValues("record_sale", OutcomeConflict)))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `livestock_analytics_requests_total{mode="year",source="deaths"} 1`)
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.ObserveLifecycle("record_sale", OutcomeOK)
		r.ObserveAnalytics("milk", "month")
	})
}
