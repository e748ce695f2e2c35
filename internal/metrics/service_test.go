package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/custody-signer/internal/metrics"
)

func TestObserveSign(t *testing.T) {
	m := metrics.NewService(prometheus.NewRegistry())

	m.ObserveSign("kms", 20*time.Millisecond, nil)
	m.ObserveSign("kms", 30*time.Millisecond, nil)
	m.ObserveSign("dfns", time.Second, errors.New("timeout"))

	assert.InDelta(t, 2, testutil.ToFloat64(m.SignRequests.WithLabelValues("kms", metrics.ResultSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SignRequests.WithLabelValues("dfns", metrics.ResultError)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.SignRequests.WithLabelValues("fireblocks", metrics.ResultSuccess)), 0)

	count, err := testutil.GatherAndCount(m.Registry, "custody_signer_sign_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNewServiceIsolatedRegistries(t *testing.T) {
	a := metrics.NewService(nil)
	b := metrics.NewService(nil)

	a.ConfigSwaps.Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(a.ConfigSwaps), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.ConfigSwaps), 0)
}
