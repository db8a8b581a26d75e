// Package intel aggregates verdicts into market-level fraud statistics and
// raises alerts when the observed fraud rate spikes.
package intel

import (
	"context"
	"sync"
	"time"

	"scam-analyzer/internal/common/config"
	"scam-analyzer/internal/common/logger"
	"scam-analyzer/internal/models"
)

// Report is a point-in-time snapshot of the verdict mix.
type Report struct {
	Total     int            `json:"total"`
	Safe      int            `json:"safe"`
	Warning   int            `json:"warning"`
	Fake      int            `json:"fake"`
	FraudRate float64        `json:"fraudRate"` // percent of analyzed messages judged Fake
	FakeRoles map[string]int `json:"fakeRoles,omitempty"`
	Window    time.Time      `json:"windowStart"`
}

// MarketIntelligence tallies verdict categories and fires an alert when the
// fraud rate crosses the configured threshold. Counters reset when an alert
// fires so each alert covers a fresh observation window.
type MarketIntelligence struct {
	mu        sync.Mutex
	safe      int
	warning   int
	fake      int
	fakeRoles map[string]int // job role -> Fake verdicts seen for it
	window    time.Time

	config config.AlertsConfig
	alerts *AlertSystem // nil disables alerting
	logger logger.Logger
}

func New(cfg config.AlertsConfig, alerts *AlertSystem, log logger.Logger) *MarketIntelligence {
	return &MarketIntelligence{
		fakeRoles: make(map[string]int),
		window:    time.Now().UTC(),
		config:    cfg,
		alerts:    alerts,
		logger:    log.WithFields(map[string]interface{}{"component": "intel"}),
	}
}

// Record tallies one verdict and fires the fraud-rate alert if this verdict
// pushed the rate over the threshold. Role is the advertised job role, empty
// when none was stated. Never blocks the analysis path: alert delivery runs
// on the calling goroutine but failures are logged, not returned.
func (m *MarketIntelligence) Record(ctx context.Context, role string, verdict *models.Verdict) {
	if verdict == nil {
		return
	}

	m.mu.Lock()
	switch verdict.Category {
	case models.VerdictFake:
		m.fake++
		if role != "" {
			m.fakeRoles[role]++
		}
	case models.VerdictWarning:
		m.warning++
	default:
		m.safe++
	}
	report := m.snapshotLocked()
	trigger := m.config.Enabled &&
		report.Total >= m.config.MinSampleSize &&
		report.FraudRate >= m.config.FraudRateThreshold
	if trigger {
		m.resetLocked()
	}
	m.mu.Unlock()

	if !trigger {
		return
	}

	m.logger.Warn("fraud rate threshold crossed", map[string]interface{}{
		"fraudRate": report.FraudRate,
		"threshold": m.config.FraudRateThreshold,
		"sample":    report.Total,
	})
	if m.alerts != nil {
		m.alerts.FraudSpike(ctx, report)
	}
}

// Snapshot returns the current verdict mix without resetting it.
func (m *MarketIntelligence) Snapshot() Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *MarketIntelligence) snapshotLocked() Report {
	total := m.safe + m.warning + m.fake
	rate := 0.0
	if total > 0 {
		rate = float64(m.fake) / float64(total) * 100
	}
	roles := make(map[string]int, len(m.fakeRoles))
	for role, n := range m.fakeRoles {
		roles[role] = n
	}
	return Report{
		Total:     total,
		Safe:      m.safe,
		Warning:   m.warning,
		Fake:      m.fake,
		FraudRate: rate,
		FakeRoles: roles,
		Window:    m.window,
	}
}

func (m *MarketIntelligence) resetLocked() {
	m.safe, m.warning, m.fake = 0, 0, 0
	m.fakeRoles = make(map[string]int)
	m.window = time.Now().UTC()
}
