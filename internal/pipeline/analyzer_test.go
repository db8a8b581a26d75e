// internal/pipeline/analyzer_test.go
package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scam-analyzer/internal/agents/decision"
	"scam-analyzer/internal/agents/extractor"
	"scam-analyzer/internal/agents/knowledge"
	"scam-analyzer/internal/agents/patterns"
	"scam-analyzer/internal/agents/salary"
	"scam-analyzer/internal/agents/verifier"
	"scam-analyzer/internal/common/config"
	"scam-analyzer/internal/common/errors"
	"scam-analyzer/internal/common/logger"
	"scam-analyzer/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

const scamText = "Join TechCorp as Data Entry Intern, $50/hour. Pay $20 verification fee via Telegram to myrecruiter@gmail.com"

const legitText = "Acme Corp is hiring a Software Engineer, $120,000 per year. Apply at careers@acme-corp.com"

type fakeSearch struct {
	results []verifier.SearchResult
	err     error
	delay   time.Duration
}

func (f *fakeSearch) Search(ctx context.Context, query string) ([]verifier.SearchResult, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, errors.NewReputationLookupTimeoutError()
		}
	}
	return f.results, f.err
}

func trustedResults() []verifier.SearchResult {
	return []verifier.SearchResult{
		{Title: "Acme Corp | LinkedIn", URL: "https://linkedin.com/company/acme-corp", Snippet: "Acme Corp has 500 employees"},
		{Title: "Working at Acme Corp", URL: "https://glassdoor.com/Reviews/acme-corp", Snippet: "4.2 stars from 130 reviews"},
	}
}

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{AnalysisTimeout: 5000}
}

func testDecisionConfig() config.DecisionConfig {
	return config.DecisionConfig{
		PatternHighWeight:   25,
		PatternMediumWeight: 10,
		PatternLowWeight:    3,
		KnowledgeWeight:     25,
		TrustHighRiskWeight: 25,
		TrustLowWeight:      10,
		TrustModerateWeight: -5,
		TrustHighWeight:     -10,
		SalaryHighWeight:    15,
		SalaryMediumWeight:  5,
		FreeMailWeight:      5,
		ContextWeight:       5,
		WarningThreshold:    20,
		FakeThreshold:       50,
	}
}

func testKnowledgeConfig() config.KnowledgeConfig {
	return config.KnowledgeConfig{HighConfidenceThreshold: 0.8, ConfidenceDecay: 0.6}
}

func testVerifierConfig() config.VerifierConfig {
	return config.VerifierConfig{Timeout: 200, MaxResults: 5, CacheTTL: 60}
}

// newTestAnalyzer wires a full pipeline on an in-memory knowledge store and
// a canned search client. No network, no database.
func newTestAnalyzer(t *testing.T, store *knowledge.MemoryStore, search verifier.SearchClient) *Analyzer {
	t.Helper()
	log := logger.NewTestLogger(t)
	return New(
		extractor.New(extractor.LoadConfig(), nil, log),
		patterns.NewDefault(log),
		knowledge.NewBase(store, testKnowledgeConfig(), log),
		verifier.New(search, nil, nil, testVerifierConfig(), log),
		salary.New(salary.DefaultTable(), log),
		decision.New(testDecisionConfig(), testKnowledgeConfig(), log),
		testPipelineConfig(),
		log,
		nil,
	)
}

// ==========================
// End-to-End Scenarios
// ==========================

func TestAnalyze_ScamMessage(t *testing.T) {
	store := knowledge.NewMemoryStore(0.6)
	a := newTestAnalyzer(t, store, &fakeSearch{})

	verdict, err := a.Analyze(context.Background(), &models.AnalysisRequest{Text: scamText})
	require.NoError(t, err)
	require.NotNil(t, verdict)

	assert.Equal(t, models.VerdictFake, verdict.Category)
	assert.GreaterOrEqual(t, verdict.Confidence, 0.8)
	assert.NotEmpty(t, verdict.SessionID)
	assert.NotEmpty(t, verdict.Explanation)
	assert.NotEmpty(t, verdict.RedFlags)
	assert.Contains(t, verdict.Signals, "score")
}

func TestAnalyze_ScamVerdictTriggersLearning(t *testing.T) {
	store := knowledge.NewMemoryStore(0.6)
	a := newTestAnalyzer(t, store, &fakeSearch{})

	verdict, err := a.Analyze(context.Background(), &models.AnalysisRequest{Text: scamText})
	require.NoError(t, err)
	require.Equal(t, models.VerdictFake, verdict.Category)

	entry, err := store.Get(context.Background(), models.IndicatorKey{
		Type:  models.IndicatorCompany,
		Value: knowledge.NormalizeValue("TechCorp"),
	})
	require.NoError(t, err)
	require.NotNil(t, entry, "high-confidence Fake verdict should confirm the company indicator")
	assert.Equal(t, 1, entry.ConfirmationCount)
	assert.InDelta(t, 0.4, entry.Confidence, 1e-9)

	// Free-mail domains never enter the knowledge base.
	freemail, err := store.Get(context.Background(), models.IndicatorKey{
		Type:  models.IndicatorDomain,
		Value: "gmail.com",
	})
	require.NoError(t, err)
	assert.Nil(t, freemail)
}

func TestAnalyze_LegitimateMessage(t *testing.T) {
	store := knowledge.NewMemoryStore(0.6)
	a := newTestAnalyzer(t, store, &fakeSearch{results: trustedResults()})

	verdict, err := a.Analyze(context.Background(), &models.AnalysisRequest{Text: legitText, JobRole: "software engineer"})
	require.NoError(t, err)

	assert.Equal(t, models.VerdictSafe, verdict.Category)
	assert.Empty(t, verdict.RedFlags)
}

func TestAnalyze_KnownIndicatorOverride(t *testing.T) {
	store := knowledge.NewMemoryStore(0.6)
	store.Seed(models.KnowledgeEntry{
		IndicatorType:     models.IndicatorDomain,
		Value:             "quickpay-jobs.net",
		Category:          models.CategoryJob,
		Confidence:        0.95,
		ConfirmationCount: 6,
	})
	a := newTestAnalyzer(t, store, &fakeSearch{results: trustedResults()})

	text := "Apply for this position today at https://quickpay-jobs.net/apply"
	verdict, err := a.Analyze(context.Background(), &models.AnalysisRequest{Text: text})
	require.NoError(t, err)

	assert.Equal(t, models.VerdictFake, verdict.Category,
		"a high-confidence known indicator overrides an otherwise clean message")
	assert.GreaterOrEqual(t, verdict.Confidence, 0.8)
}

func TestAnalyze_VerifierTimeoutStillCompletes(t *testing.T) {
	store := knowledge.NewMemoryStore(0.6)
	// Slower than the 200ms verifier timeout; the stage degrades to unknown.
	a := newTestAnalyzer(t, store, &fakeSearch{delay: 2 * time.Second})

	start := time.Now()
	verdict, err := a.Analyze(context.Background(), &models.AnalysisRequest{Text: scamText})
	require.NoError(t, err)

	assert.Equal(t, models.VerdictFake, verdict.Category)
	assert.Less(t, time.Since(start), 1500*time.Millisecond,
		"a stalled verifier must not stall the whole analysis")
}

func TestAnalyze_UnknownTrustScoresAsZero(t *testing.T) {
	store := knowledge.NewMemoryStore(0.6)
	degraded := newTestAnalyzer(t, store, &fakeSearch{err: errors.NewReputationUnavailableError(assert.AnError)})

	verdict, err := degraded.Analyze(context.Background(), &models.AnalysisRequest{Text: legitText})
	require.NoError(t, err)
	assert.NotContains(t, verdict.Explanation, "trust",
		"degraded verification must not appear as a scoring contribution")
}

func TestAnalyze_Idempotent(t *testing.T) {
	store := knowledge.NewMemoryStore(0.6)
	a := newTestAnalyzer(t, store, &fakeSearch{results: trustedResults()})

	req := &models.AnalysisRequest{Text: legitText, JobRole: "software engineer"}
	first, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Category, second.Category)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.Explanation, second.Explanation)
	assert.NotEqual(t, first.SessionID, second.SessionID)
}

func TestAnalyze_ConversationContext(t *testing.T) {
	store := knowledge.NewMemoryStore(0.6)
	a := newTestAnalyzer(t, store, &fakeSearch{})

	req := &models.AnalysisRequest{
		Text: "Please confirm your bank details to proceed with onboarding",
		Context: []models.ConversationTurn{
			{Text: scamText, Category: models.VerdictFake},
		},
	}
	verdict, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, verdict.Explanation, "conversation-history")
}

func TestAnalyze_RejectsEmptyRequest(t *testing.T) {
	store := knowledge.NewMemoryStore(0.6)
	a := newTestAnalyzer(t, store, &fakeSearch{})

	for _, req := range []*models.AnalysisRequest{nil, {Text: "   "}} {
		verdict, err := a.Analyze(context.Background(), req)
		assert.Nil(t, verdict)
		require.Error(t, err)
		assert.True(t, errors.IsInvariantViolation(err))
	}
}

func TestInferCategory(t *testing.T) {
	cases := []struct {
		text     string
		expected models.IndicatorCategory
	}{
		{"invest in bitcoin trading today", models.CategoryCrypto},
		{"apartment for rent, wire the deposit", models.CategoryRental},
		{"exciting job position, great salary", models.CategoryJob},
		{"hello there", models.CategoryOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, inferCategory(tc.text), tc.text)
	}
}
