// internal/intel/intel_test.go
package intel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scam-analyzer/internal/common/config"
	"scam-analyzer/internal/common/logger"
	"scam-analyzer/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func testAlertsConfig() config.AlertsConfig {
	cfg := config.AlertsConfig{
		Enabled:            true,
		FraudRateThreshold: 20,
		MinSampleSize:      10,
	}
	return cfg
}

type fakeNotifier struct {
	calls    int
	subjects []string
	err      error
}

func (f *fakeNotifier) Notify(ctx context.Context, subject, body string) error {
	f.calls++
	f.subjects = append(f.subjects, subject)
	return f.err
}

func (f *fakeNotifier) Channel() string { return "fake" }

func record(m *MarketIntelligence, category models.VerdictCategory, n int) {
	for i := 0; i < n; i++ {
		m.Record(context.Background(), "", &models.Verdict{Category: category})
	}
}

// ==========================
// Market Intelligence
// ==========================

func TestRecord_TalliesCategories(t *testing.T) {
	m := New(testAlertsConfig(), nil, logger.NewTestLogger(t))

	record(m, models.VerdictSafe, 3)
	record(m, models.VerdictWarning, 2)
	record(m, models.VerdictFake, 1)

	report := m.Snapshot()
	assert.Equal(t, 6, report.Total)
	assert.Equal(t, 3, report.Safe)
	assert.Equal(t, 2, report.Warning)
	assert.Equal(t, 1, report.Fake)
	assert.InDelta(t, 100.0/6.0, report.FraudRate, 1e-9)
}

func TestRecord_TracksFakeRoles(t *testing.T) {
	m := New(testAlertsConfig(), nil, logger.NewTestLogger(t))

	m.Record(context.Background(), "data entry", &models.Verdict{Category: models.VerdictFake})
	m.Record(context.Background(), "data entry", &models.Verdict{Category: models.VerdictFake})
	m.Record(context.Background(), "data entry", &models.Verdict{Category: models.VerdictSafe})
	m.Record(context.Background(), "", &models.Verdict{Category: models.VerdictFake})

	report := m.Snapshot()
	assert.Equal(t, 2, report.FakeRoles["data entry"])
	assert.Len(t, report.FakeRoles, 1, "verdicts without a stated role are not tracked by role")
}

func TestRecord_AlertBelowMinSampleNeverFires(t *testing.T) {
	notifier := &fakeNotifier{}
	m := New(testAlertsConfig(), NewAlertSystem(logger.NewTestLogger(t), notifier), logger.NewTestLogger(t))

	// 100% fraud rate but under the 10-message minimum sample.
	record(m, models.VerdictFake, 9)

	assert.Zero(t, notifier.calls)
}

func TestRecord_AlertFiresAndResetsWindow(t *testing.T) {
	notifier := &fakeNotifier{}
	m := New(testAlertsConfig(), NewAlertSystem(logger.NewTestLogger(t), notifier), logger.NewTestLogger(t))

	record(m, models.VerdictSafe, 7)
	record(m, models.VerdictFake, 3) // 10 total, 30% >= 20% threshold

	require.Equal(t, 1, notifier.calls)
	assert.Contains(t, notifier.subjects[0], "30.0%")

	// Counters reset: the next verdicts start a fresh window.
	report := m.Snapshot()
	assert.Zero(t, report.Total)
}

func TestRecord_SafeTrafficStaysQuiet(t *testing.T) {
	notifier := &fakeNotifier{}
	m := New(testAlertsConfig(), NewAlertSystem(logger.NewTestLogger(t), notifier), logger.NewTestLogger(t))

	record(m, models.VerdictSafe, 19)
	record(m, models.VerdictFake, 1) // 5% fraud rate

	assert.Zero(t, notifier.calls)
}

func TestRecord_DisabledAlertsNeverFire(t *testing.T) {
	cfg := testAlertsConfig()
	cfg.Enabled = false
	notifier := &fakeNotifier{}
	m := New(cfg, NewAlertSystem(logger.NewTestLogger(t), notifier), logger.NewTestLogger(t))

	record(m, models.VerdictFake, 20)

	assert.Zero(t, notifier.calls)
}

func TestAlertSystem_OneFailingChannelDoesNotSuppressOthers(t *testing.T) {
	failing := &fakeNotifier{err: assert.AnError}
	healthy := &fakeNotifier{}
	alerts := NewAlertSystem(logger.NewTestLogger(t), failing, healthy)

	alerts.FraudSpike(context.Background(), Report{Total: 10, Fake: 3, FraudRate: 30})

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, healthy.calls)
}
