package labmatch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// HealthChecker is what a HealthMonitor polls.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// HealthMonitor polls the backend on a fixed interval and reports every
// state change. It must be stopped on teardown.
type HealthMonitor struct {
	checker  HealthChecker
	interval time.Duration
	onChange func(Health)
	logger   *log.Logger

	mu      sync.Mutex
	checks  sync.WaitGroup
	cron    *cron.Cron
	last    Health
	started bool
}

// NewHealthMonitor creates a stopped monitor. The initial state is healthy so
// no banner flashes before the first check.
func NewHealthMonitor(checker HealthChecker, interval time.Duration, onChange func(Health), logger *log.Logger) *HealthMonitor {
	if interval < time.Second {
		interval = time.Second
	}
	return &HealthMonitor{
		checker:  checker,
		interval: interval,
		onChange: onChange,
		logger:   logger,
		last:     HealthHealthy,
	}
}

// Start runs one check immediately and then schedules the rest.
func (m *HealthMonitor) Start() error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", m.interval), m.Check); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("schedule health check: %w", err)
	}
	m.cron = c
	m.started = true
	m.mu.Unlock()

	m.checks.Add(1)
	go func() {
		defer m.checks.Done()
		m.Check()
	}()
	c.Start()
	return nil
}

// Stop cancels the schedule and waits for running checks, including the
// initial one, to return. No change is reported after Stop returns.
func (m *HealthMonitor) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.started = false
	m.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
	m.checks.Wait()
}

// Check queries the backend once and reports a change.
func (m *HealthMonitor) Check() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()
	h := m.checker.CheckHealth(ctx)

	m.mu.Lock()
	changed := h != m.last
	m.last = h
	m.mu.Unlock()

	if !changed {
		return
	}
	if m.logger != nil {
		m.logger.Printf("backend health: %s", h)
	}
	if m.onChange != nil {
		m.onChange(h)
	}
}

// HealthBanner is the banner text for h, empty when healthy.
func HealthBanner(h Health) string {
	switch h {
	case HealthHealthy:
		return ""
	case HealthSupabaseDown:
		return "Backend database is unavailable, results may not load..."
	default:
		return "Backend is starting up, please wait (~60s)..."
	}
}
