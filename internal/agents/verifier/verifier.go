// internal/agents/verifier/verifier.go
package verifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scam-analyzer/internal/common/config"
	"scam-analyzer/internal/common/logger"
	"scam-analyzer/internal/common/metrics"
	"scam-analyzer/internal/models"
)

// scamSignals are reputation-search keywords counted against the subject.
var scamSignals = []string{"scam", "fraud", "fraudulent", "ripoff", "rip-off", "complaint", "fake company", "beware"}

// trustedHosts are sites whose presence in results argues for a real,
// established employer.
var trustedHosts = []string{
	"linkedin.com", "glassdoor.com", "indeed.com",
	"crunchbase.com", "bbb.org", "trustpilot.com",
}

// Verifier checks a subject's external reputation. Verify never fails: every
// degraded path collapses to trust=unknown, which scores as exactly zero
// downstream.
type Verifier struct {
	search  SearchClient
	reports ReportCounter // nil when no report index is configured
	cache   Cache         // nil disables caching
	config  config.VerifierConfig
	logger  logger.Logger
}

func New(search SearchClient, reports ReportCounter, cache Cache, cfg config.VerifierConfig, log logger.Logger) *Verifier {
	return &Verifier{
		search:  search,
		reports: reports,
		cache:   cache,
		config:  cfg,
		logger:  log.WithFields(map[string]interface{}{"stage": "verifier"}),
	}
}

// Verify assesses the company or domain in entities. The call is bounded by
// the configured verifier timeout regardless of the parent context.
func (v *Verifier) Verify(ctx context.Context, entities *models.ExtractedEntities) *models.TrustAssessment {
	subject := verificationSubject(entities)
	if subject == "" {
		return models.UnknownTrust("no company or domain to verify")
	}

	key := CacheKey(subject, entities.Domains())
	if v.cache != nil {
		if cached, ok := v.cache.Get(ctx, key); ok {
			metrics.VerifierCacheHits.WithLabelValues("hit").Inc()
			return cached
		}
		metrics.VerifierCacheHits.WithLabelValues("miss").Inc()
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(v.config.Timeout)*time.Millisecond)
	defer cancel()

	results, err := v.search.Search(ctx, fmt.Sprintf("%q scam reviews", subject))
	if err != nil {
		metrics.VerifierDegraded.Inc()
		v.logger.Warn("reputation lookup degraded to unknown", map[string]interface{}{
			"subject": subject,
			"error":   err.Error(),
		})
		return models.UnknownTrust(err.Error())
	}

	reportCount := 0
	if v.reports != nil {
		if n, rerr := v.reports.Count(ctx, subject); rerr != nil {
			v.logger.Warn("report index unavailable, continuing on search only", map[string]interface{}{
				"subject": subject,
				"error":   rerr.Error(),
			})
		} else {
			reportCount = n
		}
	}

	assessment := classify(subject, results, reportCount)
	v.logger.Info("reputation assessed", map[string]interface{}{
		"subject": subject,
		"level":   string(assessment.Level),
		"results": len(results),
		"reports": reportCount,
	})

	if v.cache != nil {
		v.cache.Set(ctx, key, assessment, time.Duration(v.config.CacheTTL)*time.Second)
	}
	return assessment
}

func verificationSubject(entities *models.ExtractedEntities) string {
	if entities.CompanyName != "" {
		return entities.CompanyName
	}
	if domains := entities.Domains(); len(domains) > 0 {
		return domains[0]
	}
	return ""
}

func classify(subject string, results []SearchResult, reportCount int) *models.TrustAssessment {
	scamHits := 0
	trustHits := 0
	var sources []string

	for _, r := range results {
		text := strings.ToLower(r.Title + " " + r.Snippet)
		for _, kw := range scamSignals {
			if strings.Contains(text, kw) {
				scamHits++
				sources = append(sources, r.URL)
				break
			}
		}
		host := models.DomainOfURL(r.URL)
		for _, trusted := range trustedHosts {
			if host == trusted || strings.HasSuffix(host, "."+trusted) {
				trustHits++
				sources = append(sources, r.URL)
				break
			}
		}
	}

	switch {
	case reportCount > 0:
		return &models.TrustAssessment{
			Level:    models.TrustHighRisk,
			Evidence: fmt.Sprintf("%d scam reports on file for %s", reportCount, subject),
			Sources:  sources,
		}
	case scamHits >= 3:
		return &models.TrustAssessment{
			Level:    models.TrustHighRisk,
			Evidence: fmt.Sprintf("%d of %d search results mention fraud", scamHits, len(results)),
			Sources:  sources,
		}
	case scamHits >= 1:
		return &models.TrustAssessment{
			Level:    models.TrustLow,
			Evidence: fmt.Sprintf("fraud mentions found for %s", subject),
			Sources:  sources,
		}
	case trustHits >= 2:
		return &models.TrustAssessment{
			Level:    models.TrustHigh,
			Evidence: fmt.Sprintf("established footprint on %d trusted sites", trustHits),
			Sources:  sources,
		}
	case trustHits == 1:
		return &models.TrustAssessment{
			Level:    models.TrustModerate,
			Evidence: "limited footprint on trusted sites",
			Sources:  sources,
		}
	case len(results) == 0:
		return &models.TrustAssessment{
			Level:    models.TrustLow,
			Evidence: fmt.Sprintf("no public footprint found for %s", subject),
		}
	default:
		return &models.TrustAssessment{
			Level:    models.TrustModerate,
			Evidence: "public footprint without fraud mentions",
			Sources:  sources,
		}
	}
}
