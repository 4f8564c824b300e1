package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/aescanero/demo-backend/pkg/ports"
	"go.uber.org/zap"
)

// Prober checks the downstream health endpoint
type Prober interface {
	CheckHealth(ctx context.Context, timeout time.Duration) error
}

// Listener is notified whenever the probe result changes
type Listener func(up bool)

// Status is the latest probe outcome
type Status struct {
	Up        bool
	Checked   bool
	LastError string
	Timestamp time.Time
}

// DownstreamMonitor periodically probes the database service
type DownstreamMonitor struct {
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	metrics  ports.MetricsCollector
	logger   *zap.Logger

	mu        sync.RWMutex
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	status    Status
	listeners []Listener
}

// NewDownstreamMonitor creates a new monitor
func NewDownstreamMonitor(
	prober Prober,
	interval, timeout time.Duration,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
) *DownstreamMonitor {
	return &DownstreamMonitor{
		prober:   prober,
		interval: interval,
		timeout:  timeout,
		metrics:  metrics,
		logger:   logger,
	}
}

// OnChange registers a listener; call before Start
func (m *DownstreamMonitor) OnChange(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, l)
}

// Start probes once immediately and then every interval
func (m *DownstreamMonitor) Start() {
	m.mu.Lock()
	if m.running || m.interval <= 0 {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.mu.Unlock()

	go m.run()
}

// Stop stops the monitor and waits for the loop to exit
func (m *DownstreamMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (m *DownstreamMonitor) run() {
	defer close(m.doneCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-m.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	m.CheckNow(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.CheckNow(ctx)
		}
	}
}

// CheckNow runs a single probe and returns its status
func (m *DownstreamMonitor) CheckNow(ctx context.Context) Status {
	err := m.prober.CheckHealth(ctx, m.timeout)

	next := Status{
		Up:        err == nil,
		Checked:   true,
		Timestamp: time.Now(),
	}
	if err != nil {
		next.LastError = err.Error()
	}

	m.mu.Lock()
	prev := m.status
	m.status = next
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	m.metrics.SetDownstreamUp(next.Up)

	if prev.Checked && prev.Up == next.Up {
		return next
	}

	if next.Up {
		m.logger.Info("database service is reachable")
	} else {
		m.logger.Warn("database service is unreachable", zap.String("error", next.LastError))
	}
	for _, l := range listeners {
		l(next.Up)
	}

	return next
}

// GetStatus returns the latest probe outcome
func (m *DownstreamMonitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.status
}

// IsHealthy reports whether the last probe succeeded
func (m *DownstreamMonitor) IsHealthy() bool {
	return m.GetStatus().Up
}
