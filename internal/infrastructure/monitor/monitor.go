// Package monitor tracks gateway reachability so the reconciler can
// skip pointless resyncs and the health endpoint can report the
// connection state.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger performs a cheap reachability check against the gateway.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the most recent connectivity picture.
type Status struct {
	Gateway   bool      `json:"gateway"`
	LastCheck time.Time `json:"last_check"`
	LastError string    `json:"last_error,omitempty"`
}

// Monitor polls the gateway on an interval.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	status Status
	stopCh chan struct{}
}

// New builds a monitor polling at the given interval.
func New(pinger Pinger, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pinger:   pinger,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the polling loop.
func (m *Monitor) Start() {
	go m.loop()
}

// Stop ends the polling loop.
func (m *Monitor) Stop() {
	close(m.stopCh)
}

// IsOnline reports whether the last check reached the gateway.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Gateway
}

// GetStatus returns the full connectivity picture.
func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	status := Status{Gateway: true, LastCheck: time.Now()}
	if err := m.pinger.Ping(ctx); err != nil {
		status.Gateway = false
		status.LastError = err.Error()
		m.logger.Debug("gateway ping failed", zap.Error(err))
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}
