package network

import (
	"context"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Monitor defaults
const (
	DefaultCheckInterval = 30 * time.Second
	DefaultProbeURL      = "https://www.google.com"
	ProbeTimeout         = 3 * time.Second
)

// Monitor tracks internet connectivity by probing a URL periodically
type Monitor struct {
	mu        sync.RWMutex
	connected bool
	onChange  func(bool)

	probeURL string
	interval time.Duration
	client   *http.Client
}

// NewMonitor creates a monitor that assumes it starts online
func NewMonitor(probeURL string, interval time.Duration) *Monitor {
	if probeURL == "" {
		probeURL = DefaultProbeURL
	}
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &Monitor{
		connected: true,
		probeURL:  probeURL,
		interval:  interval,
		client:    &http.Client{Timeout: ProbeTimeout},
	}
}

// OnChange registers the callback invoked on every connectivity transition
func (m *Monitor) OnChange(fn func(bool)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Connected reports the last observed state
func (m *Monitor) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Check probes once and returns the new state. A check interrupted by ctx
// keeps the previous state.
func (m *Monitor) Check(ctx context.Context) bool {
	connected := m.probe(ctx)
	if ctx.Err() != nil {
		return m.Connected()
	}

	m.mu.Lock()
	changed := connected != m.connected
	m.connected = connected
	callback := m.onChange
	m.mu.Unlock()

	if changed {
		logger := log.WithFields(log.Fields{"module": "network", "function": "Check"})
		if connected {
			logger.Info("Network connection restored")
		} else {
			logger.Warn("Network connection lost")
		}
		if callback != nil {
			callback(connected)
		}
	}
	return connected
}

// Run checks immediately and then every interval until ctx is done
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Any HTTP response counts as connected
func (m *Monitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
