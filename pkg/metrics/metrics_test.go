package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.IncLockContention()
	c.IncLockContention()
	c.IncCacheInvalidation()
	c.IncCacheMiss()
	c.IncRevisionAppended()

	assert.EqualValues(t, 2, testutil.ToFloat64(c.lockContention))
	assert.EqualValues(t, 1, testutil.ToFloat64(c.cacheInvalidations))
	assert.EqualValues(t, 1, testutil.ToFloat64(c.cacheMisses))
	assert.EqualValues(t, 1, testutil.ToFloat64(c.revisionsAppended))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 4)
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	// must not panic
	c.IncLockContention()
	c.IncCacheInvalidation()
	c.IncCacheMiss()
	c.IncRevisionAppended()
}
