// internal/agents/extractor/extractor_test.go
package extractor

import (
	"context"
	"errors"
	"testing"
	"time"

	"scam-analyzer/internal/common/logger"
	"scam-analyzer/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		LLMTimeout: 1 * time.Second,
	}
}

// fakeReasoner returns a canned payload or error.
type fakeReasoner struct {
	payload []byte
	err     error
	calls   int
}

func (f *fakeReasoner) ExtractEntities(ctx context.Context, text string) ([]byte, error) {
	f.calls++
	return f.payload, f.err
}

// ==========================
// Core Functionality Tests
// ==========================

func TestExtract_JobOfferMessage(t *testing.T) {
	x := New(createTestConfig(), nil, logger.NewTestLogger(t))

	text := "Join TechCorp as Data Entry Intern, $50/hour. Pay $20 verification fee via Telegram to myrecruiter@gmail.com"
	entities := x.Extract(context.Background(), text)

	require.NotNil(t, entities)
	assert.Equal(t, "TechCorp", entities.CompanyName)
	assert.Equal(t, "Data Entry Intern", entities.JobRole)

	require.Len(t, entities.Emails, 1)
	assert.Equal(t, "myrecruiter@gmail.com", entities.Emails[0].Address)
	assert.Equal(t, "gmail.com", entities.Emails[0].Domain)
	assert.True(t, entities.Emails[0].FreeMail)
	assert.True(t, entities.HasFreeMailContact())

	require.Len(t, entities.Fees, 1)
	assert.True(t, entities.Fees[0].Amount.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "USD", entities.Fees[0].Currency)
	assert.Equal(t, "verification", entities.Fees[0].Purpose)
	assert.True(t, entities.HasFees())

	require.NotNil(t, entities.Compensation)
	assert.True(t, entities.Compensation.Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, models.PerHour, entities.Compensation.Period)

	assert.True(t, entities.HasChannel(models.ChannelTelegram))
	assert.True(t, entities.HasChannel(models.ChannelEmail))
}

func TestExtract_AnnualSalaryOffer(t *testing.T) {
	x := New(createTestConfig(), nil, logger.NewTestLogger(t))

	text := "Software Engineer role at Acme Systems, $75k/year. Apply via careers@acmesystems.com"
	entities := x.Extract(context.Background(), text)

	assert.Equal(t, "Acme Systems", entities.CompanyName)
	assert.Equal(t, "Software Engineer", entities.JobRole)

	require.NotNil(t, entities.Compensation)
	assert.True(t, entities.Compensation.Amount.Equal(decimal.NewFromInt(75000)))
	assert.Equal(t, models.PerYear, entities.Compensation.Period)

	assert.Empty(t, entities.Fees)
	require.Len(t, entities.Emails, 1)
	assert.False(t, entities.Emails[0].FreeMail)
	assert.False(t, entities.HasFreeMailContact())
}

func TestExtract_MoneyClassification(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		expectFees   int
		feePurpose   string
		feeAmount    int64
		feeCurrency  string
		expectComp   bool
		compAmount   int64
		compPeriod   models.PayPeriod
	}{
		{
			name:        "training fee in euros",
			text:        "Send a €300 training fee before your first shift",
			expectFees:  1,
			feePurpose:  "training",
			feeAmount:   300,
			feeCurrency: "EUR",
		},
		{
			name:        "registration fee with thousands separator",
			text:        "Rs. 5,000 registration charge applies",
			expectFees:  1,
			feePurpose:  "registration",
			feeAmount:   5000,
			feeCurrency: "INR",
		},
		{
			name:        "laptop deposit maps to equipment",
			text:        "We need $150 for your laptop shipping",
			expectFees:  1,
			feePurpose:  "equipment",
			feeAmount:   150,
			feeCurrency: "USD",
		},
		{
			name:       "monthly pay",
			text:       "Earn £2,500 per month working remotely",
			expectComp: true,
			compAmount: 2500,
			compPeriod: models.PerMonth,
		},
		{
			name: "unclassified amount is dropped",
			text: "The market moved $100 yesterday",
		},
		{
			name:        "fee and compensation in one message",
			text:        "Salary $30/hr, just cover the $45 onboarding fee first",
			expectFees:  1,
			feePurpose:  "onboarding",
			feeAmount:   45,
			feeCurrency: "USD",
			expectComp:  true,
			compAmount:  30,
			compPeriod:  models.PerHour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fees, comp := extractMoney(tt.text)

			require.Len(t, fees, tt.expectFees)
			if tt.expectFees > 0 {
				assert.Equal(t, tt.feePurpose, fees[0].Purpose)
				assert.True(t, fees[0].Amount.Equal(decimal.NewFromInt(tt.feeAmount)),
					"fee amount %s", fees[0].Amount)
				assert.Equal(t, tt.feeCurrency, fees[0].Currency)
			}

			if tt.expectComp {
				require.NotNil(t, comp)
				assert.True(t, comp.Amount.Equal(decimal.NewFromInt(tt.compAmount)),
					"comp amount %s", comp.Amount)
				assert.Equal(t, tt.compPeriod, comp.Period)
			} else {
				assert.Nil(t, comp)
			}
		})
	}
}

func TestExtract_Channels(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []models.ContactChannel
	}{
		{
			name:     "whatsapp keyword",
			text:     "Message us on WhatsApp to start",
			expected: []models.ContactChannel{models.ChannelWhatsapp},
		},
		{
			name:     "phone number",
			text:     "Call +1 555 867 5309 today",
			expected: []models.ContactChannel{models.ChannelPhone},
		},
		{
			name:     "discord maps to other",
			text:     "join our discord for onboarding",
			expected: []models.ContactChannel{models.ChannelOther},
		},
		{
			name:     "email plus telegram",
			text:     "write to jobs@example.org or find us on Telegram",
			expected: []models.ContactChannel{models.ChannelEmail, models.ChannelTelegram},
		},
		{
			name: "no contact channel",
			text: "Great opportunity, details to follow",
		},
	}

	x := New(createTestConfig(), nil, logger.NewTestLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := x.Extract(context.Background(), tt.text)
			assert.Equal(t, tt.expected, entities.Channels)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips html tags",
			input:    "<p>Join <b>TechCorp</b> today</p>",
			expected: "Join TechCorp today",
		},
		{
			name:     "drops script content entirely",
			input:    "Offer<script>alert(1)</script> inside",
			expected: "Offer inside",
		},
		{
			name:     "collapses whitespace",
			input:    "pay   $20\n\tnow",
			expected: "pay $20 now",
		},
		{
			name:     "preserves casing",
			input:    "Acme Systems IS Hiring",
			expected: "Acme Systems IS Hiring",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

// ==========================
// Reasoning Merge Tests
// ==========================

func TestExtract_LLMMerge(t *testing.T) {
	text := "Analyst opening, great pay, write to hr@globex.com"

	t.Run("valid response fills gaps and appends novel entities", func(t *testing.T) {
		llm := &fakeReasoner{payload: []byte(
			`{"companyName":"Globex","jobRole":"Analyst","emails":["hr@globex.com","boss@globex.com"],"urls":["https://globex.com/jobs"]}`,
		)}
		x := New(createTestConfig(), llm, logger.NewTestLogger(t))

		entities := x.Extract(context.Background(), text)

		assert.Equal(t, 1, llm.calls)
		assert.Equal(t, "Globex", entities.CompanyName)
		// hr@globex.com is already found by the regex path; only the
		// novel address is appended.
		require.Len(t, entities.Emails, 2)
		assert.Equal(t, "hr@globex.com", entities.Emails[0].Address)
		assert.Equal(t, "boss@globex.com", entities.Emails[1].Address)
		assert.Equal(t, []string{"https://globex.com/jobs"}, entities.URLs)
	})

	t.Run("regex result wins over llm for populated fields", func(t *testing.T) {
		llm := &fakeReasoner{payload: []byte(`{"companyName":"Initech"}`)}
		x := New(createTestConfig(), llm, logger.NewTestLogger(t))

		entities := x.Extract(context.Background(), "Join TechCorp today, contact hr@techcorp.io")
		assert.Equal(t, "TechCorp", entities.CompanyName)
	})

	t.Run("malformed json contributes nothing", func(t *testing.T) {
		llm := &fakeReasoner{payload: []byte(`not json {{{`)}
		x := New(createTestConfig(), llm, logger.NewTestLogger(t))

		entities := x.Extract(context.Background(), text)
		assert.Equal(t, "", entities.CompanyName)
		assert.Len(t, entities.Emails, 1)
	})

	t.Run("schema violation contributes nothing", func(t *testing.T) {
		llm := &fakeReasoner{payload: []byte(`{"companyName":"Globex","verdict":"Fake"}`)}
		x := New(createTestConfig(), llm, logger.NewTestLogger(t))

		entities := x.Extract(context.Background(), text)
		assert.Equal(t, "", entities.CompanyName)
	})

	t.Run("client error degrades to regex-only result", func(t *testing.T) {
		llm := &fakeReasoner{err: errors.New("upstream unavailable")}
		x := New(createTestConfig(), llm, logger.NewTestLogger(t))

		entities := x.Extract(context.Background(), text)
		require.NotNil(t, entities)
		assert.Len(t, entities.Emails, 1)
	})
}

// ==========================
// Edge Cases
// ==========================

func TestExtract_EdgeCases(t *testing.T) {
	x := New(createTestConfig(), nil, logger.NewTestLogger(t))

	t.Run("empty input", func(t *testing.T) {
		entities := x.Extract(context.Background(), "")
		require.NotNil(t, entities)
		assert.Equal(t, "", entities.CompanyName)
		assert.Empty(t, entities.Emails)
		assert.Empty(t, entities.Fees)
		assert.Nil(t, entities.Compensation)
	})

	t.Run("duplicate emails and urls collapse", func(t *testing.T) {
		text := "Write hr@acme.com or HR@acme.com, see https://acme.com/jobs and https://acme.com/jobs."
		entities := x.Extract(context.Background(), text)
		assert.Len(t, entities.Emails, 1)
		assert.Equal(t, []string{"https://acme.com/jobs"}, entities.URLs)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		text := "Join TechCorp as Data Entry Intern, $50/hour. Pay $20 verification fee via Telegram to myrecruiter@gmail.com"
		first := x.Extract(context.Background(), text)
		second := x.Extract(context.Background(), text)
		assert.Equal(t, first, second)
	})
}

func TestDomainOfURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.acme.com/jobs?id=1", "acme.com"},
		{"http://acme.com:8080/jobs", "acme.com"},
		{"https://jobs.acme.co.uk", "jobs.acme.co.uk"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, models.DomainOfURL(tt.url))
	}
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkExtract(b *testing.B) {
	x := New(createTestConfig(), nil, logger.NewNoOpLogger())
	text := "Join TechCorp as Data Entry Intern, $50/hour. Pay $20 verification fee via Telegram to myrecruiter@gmail.com"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x.Extract(context.Background(), text)
	}
}
