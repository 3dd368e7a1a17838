package prometrics

import (
	"testing"

	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterRegistersOnceAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg, "minishop", "")

	c1 := r.Counter("orders_total", "orders", "outcome")
	c2 := r.Counter("orders_total", "orders", "outcome")

	c1.Add(1, observability.L("outcome", "success"))
	c2.Bind(observability.L("outcome", "success")).Add(2)

	n, err := testutil.GatherAndCount(reg, "minishop_orders_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cv := r.(*registry)
	v, ok := cv.counters.Load("orders_total")
	require.True(t, ok)
	assert.Equal(t, 3.0, testutil.ToFloat64(v.(*prometheus.CounterVec).WithLabelValues("success")))
}

func TestStandardInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	counters, histograms := Standard(New(reg, "", ""))

	assert.Contains(t, counters, observability.MUsecaseRequests)
	assert.Contains(t, counters, observability.MNotifications)
	assert.Contains(t, histograms, observability.MHTTPRequestDuration)

	counters[observability.MNotifications].Add(1,
		observability.L("kind", "new_order"),
		observability.L("outcome", "delivered"),
	)
	n, err := testutil.GatherAndCount(reg, "notifications_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
