// internal/agents/knowledge/base.go
package knowledge

import (
	"context"
	"sort"
	"strings"

	"scam-analyzer/internal/common/config"
	"scam-analyzer/internal/common/logger"
	"scam-analyzer/internal/common/metrics"
	"scam-analyzer/internal/models"
)

// Base is the learning stage: point lookups against the indicator store
// during analysis, and confirmation writes after high-confidence Fake
// verdicts. A store failure never blocks an analysis; lookups degrade to
// no-match and proposals are dropped with a log line.
type Base struct {
	store  Store
	config config.KnowledgeConfig
	logger logger.Logger
}

func NewBase(store Store, cfg config.KnowledgeConfig, log logger.Logger) *Base {
	return &Base{
		store:  store,
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"stage": "knowledge"}),
	}
}

// Lookup returns every stored indicator matching the message, ordered by
// confidence descending (ties broken by type then value, so the order is
// stable). Candidates are the extracted domains (exact FQDN match, never
// substring), the company name, fee purposes, and stored phrase indicators
// contained in the text.
func (b *Base) Lookup(ctx context.Context, text string, entities *models.ExtractedEntities) ([]models.KnowledgeEntry, error) {
	var found []models.KnowledgeEntry
	var lastErr error

	consider := func(entry *models.KnowledgeEntry, err error) {
		if err != nil {
			lastErr = err
			return
		}
		if entry != nil {
			found = append(found, *entry)
		}
	}

	for _, domain := range entities.Domains() {
		entry, err := b.store.Get(ctx, models.IndicatorKey{Type: models.IndicatorDomain, Value: domain})
		consider(entry, err)
	}
	if entities.CompanyName != "" {
		entry, err := b.store.Get(ctx, models.IndicatorKey{Type: models.IndicatorCompany, Value: entities.CompanyName})
		consider(entry, err)
	}
	for _, fee := range entities.Fees {
		entry, err := b.store.Get(ctx, models.IndicatorKey{Type: models.IndicatorFeePattern, Value: fee.Purpose})
		consider(entry, err)
	}

	phrases, err := b.store.ByType(ctx, models.IndicatorPhrase)
	if err != nil {
		lastErr = err
	} else {
		lower := strings.ToLower(text)
		for i := range phrases {
			if strings.Contains(lower, phrases[i].Value) {
				consider(&phrases[i], nil)
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Confidence != found[j].Confidence {
			return found[i].Confidence > found[j].Confidence
		}
		if found[i].IndicatorType != found[j].IndicatorType {
			return found[i].IndicatorType < found[j].IndicatorType
		}
		return found[i].Value < found[j].Value
	})

	if len(found) > 0 {
		b.logger.Debug("knowledge matches", map[string]interface{}{
			"count":          len(found),
			"top_type":       string(found[0].IndicatorType),
			"top_value":      found[0].Value,
			"top_confidence": found[0].Confidence,
		})
		return found, nil
	}
	return nil, lastErr
}

// Propose feeds a finished verdict back into the store. Only Fake verdicts
// at or above the configured confidence threshold are learned; anything less
// is skipped so one borderline call cannot poison future analyses. Write
// failures are logged and dropped.
func (b *Base) Propose(ctx context.Context, entities *models.ExtractedEntities, verdict *models.Verdict, category models.IndicatorCategory) {
	if verdict.Category != models.VerdictFake || verdict.Confidence < b.config.HighConfidenceThreshold {
		metrics.KnowledgeUpdates.WithLabelValues("skipped").Inc()
		return
	}

	for _, em := range entities.Emails {
		// Consumer providers host victims too; learning gmail.com as a
		// scam domain would poison every later lookup.
		if em.FreeMail {
			continue
		}
		b.confirm(ctx, models.IndicatorDomain, em.Domain, category)
	}
	for _, u := range entities.URLs {
		if d := models.DomainOfURL(u); d != "" {
			b.confirm(ctx, models.IndicatorDomain, d, category)
		}
	}
	if entities.CompanyName != "" {
		b.confirm(ctx, models.IndicatorCompany, entities.CompanyName, category)
	}
	for _, fee := range entities.Fees {
		b.confirm(ctx, models.IndicatorFeePattern, fee.Purpose, category)
	}
}

func (b *Base) confirm(ctx context.Context, t models.IndicatorType, value string, category models.IndicatorCategory) {
	entry, err := b.store.Confirm(ctx, t, value, category)
	if err != nil {
		metrics.KnowledgeUpdates.WithLabelValues("failed").Inc()
		b.logger.Warn("knowledge update dropped", map[string]interface{}{
			"indicator_type": string(t),
			"value":          value,
			"error":          err.Error(),
		})
		return
	}

	outcome := "confirmed"
	if entry.ConfirmationCount == 1 {
		outcome = "inserted"
	}
	metrics.KnowledgeUpdates.WithLabelValues(outcome).Inc()
	b.logger.Info("knowledge indicator confirmed", map[string]interface{}{
		"indicator_type": string(t),
		"value":          entry.Value,
		"confidence":     entry.Confidence,
		"confirmations":  entry.ConfirmationCount,
	})
}

// HighConfidence reports whether an entry crosses the hard-override bar.
func (b *Base) HighConfidence(entry *models.KnowledgeEntry) bool {
	return entry != nil && entry.Confidence >= b.config.HighConfidenceThreshold
}
