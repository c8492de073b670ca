package labmatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedChecker struct {
	mu    sync.Mutex
	seq   []Health
	calls int
}

func (c *scriptedChecker) CheckHealth(context.Context) Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.seq[len(c.seq)-1]
	if c.calls < len(c.seq) {
		h = c.seq[c.calls]
	}
	c.calls++
	return h
}

func TestHealthMonitorReportsChangesOnly(t *testing.T) {
	checker := &scriptedChecker{seq: []Health{HealthHealthy, HealthDown, HealthDown, HealthSupabaseDown, HealthHealthy}}
	var changes []Health
	m := NewHealthMonitor(checker, time.Second, func(h Health) { changes = append(changes, h) }, nil)

	for i := 0; i < 5; i++ {
		m.Check()
	}
	assert.Equal(t, []Health{HealthDown, HealthSupabaseDown, HealthHealthy}, changes)
}

func TestHealthMonitorStartChecksImmediately(t *testing.T) {
	checker := &scriptedChecker{seq: []Health{HealthDown}}
	changed := make(chan Health, 4)
	m := NewHealthMonitor(checker, time.Hour, func(h Health) { changed <- h }, nil)
	require.NoError(t, m.Start())
	defer m.Stop()
	require.NoError(t, m.Start(), "second start is a no-op")

	select {
	case h := <-changed:
		assert.Equal(t, HealthDown, h)
	case <-time.After(5 * time.Second):
		t.Fatal("no initial check")
	}
}

func TestHealthBanner(t *testing.T) {
	assert.Empty(t, HealthBanner(HealthHealthy))
	assert.Contains(t, HealthBanner(HealthDown), "starting up")
	assert.Contains(t, HealthBanner(HealthSupabaseDown), "database")
}

type slowChecker struct {
	delay time.Duration
}

func (c slowChecker) CheckHealth(context.Context) Health {
	time.Sleep(c.delay)
	return HealthDown
}

func TestHealthMonitorStopWaitsForInitialCheck(t *testing.T) {
	var mu sync.Mutex
	changes := 0
	m := NewHealthMonitor(slowChecker{delay: 100 * time.Millisecond}, time.Hour, func(Health) {
		mu.Lock()
		changes++
		mu.Unlock()
	}, nil)

	require.NoError(t, m.Start())
	m.Stop()

	mu.Lock()
	assert.Equal(t, 1, changes, "initial check finished before Stop returned")
	mu.Unlock()
	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, changes)
	mu.Unlock()
}
