package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetConnected(t *testing.T) {
	m := New()

	m.SetConnected(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Connected))

	m.SetConnected(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Connected))
}

func TestObserveDispatch_LabelsByOutcome(t *testing.T) {
	m := New()

	m.ObserveDispatch("ConfigurationDiscoveryCommand", nil)
	m.ObserveDispatch("ConfigurationDiscoveryCommand", errors.New("boom"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CommandsDispatched.WithLabelValues("ConfigurationDiscoveryCommand", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CommandsDispatched.WithLabelValues("ConfigurationDiscoveryCommand", "error")))
}

func TestObserveConfigSync_RecordsSample(t *testing.T) {
	m := New()
	m.ObserveConfigSync(50 * time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(m.ConfigSyncDuration))
}

func TestRegister_AttachesAllCollectors(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()

	assert.NotPanics(t, func() { m.Register(reg) })

	// a counter vector with no labelled children gathers no family at all.
	m.ObserveDispatch("ConfigurationDiscoveryCommand", nil)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 4)
}
