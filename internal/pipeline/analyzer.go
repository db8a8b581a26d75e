// Package pipeline orchestrates the agent stages into one analysis call.
package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"scam-analyzer/internal/agents/decision"
	"scam-analyzer/internal/agents/extractor"
	"scam-analyzer/internal/agents/knowledge"
	"scam-analyzer/internal/agents/patterns"
	"scam-analyzer/internal/agents/salary"
	"scam-analyzer/internal/agents/verifier"
	"scam-analyzer/internal/common/config"
	"scam-analyzer/internal/common/errors"
	"scam-analyzer/internal/common/logger"
	"scam-analyzer/internal/common/metrics"
	"scam-analyzer/internal/common/observability"
	"scam-analyzer/internal/models"
)

// Analyzer wires the extraction stage, the four concurrent assessment
// stages, and the decision aggregator. Safe for concurrent use: every
// stage is stateless per call.
type Analyzer struct {
	extractor *extractor.Extractor
	matcher   *patterns.Matcher
	knowledge *knowledge.Base
	verifier  *verifier.Verifier
	salary    *salary.Reasoner
	decision  *decision.Aggregator
	config    config.PipelineConfig
	logger    logger.Logger
	obs       *observability.Observability
}

func New(
	ext *extractor.Extractor,
	matcher *patterns.Matcher,
	kb *knowledge.Base,
	ver *verifier.Verifier,
	sal *salary.Reasoner,
	dec *decision.Aggregator,
	cfg config.PipelineConfig,
	log logger.Logger,
	obs *observability.Observability,
) *Analyzer {
	return &Analyzer{
		extractor: ext,
		matcher:   matcher,
		knowledge: kb,
		verifier:  ver,
		salary:    sal,
		decision:  dec,
		config:    cfg,
		logger:    log,
		obs:       obs,
	}
}

// Analyze runs the full pipeline over one request and always returns a
// complete Verdict unless the request itself is malformed. Stage failures
// degrade: a dead knowledge store or an unreachable verifier lowers signal
// quality, it never fails the call.
func (a *Analyzer) Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.Verdict, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		err := errors.NewInvariantViolationError("analysis request must carry non-empty text")
		metrics.AnalysesFailed.WithLabelValues(string(errors.ErrCodeInvariantViolation)).Inc()
		return nil, err
	}

	sessionID := uuid.New().String()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.config.AnalysisTimeout)*time.Millisecond)
	defer cancel()

	a.logger.Info("Starting analysis", map[string]interface{}{
		"sessionId":  sessionID,
		"textLength": len(req.Text),
	})

	entities := a.timedExtract(ctx, req.Text)
	if req.JobRole != "" {
		entities.JobRole = req.JobRole
	}

	in := &decision.Inputs{
		Entities: entities,
		Context:  req.Context,
	}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		defer a.observeStage("patterns", time.Now())
		in.Matches = a.matcher.Match(req.Text, entities)
	}()

	go func() {
		defer wg.Done()
		defer a.observeStage("knowledge", time.Now())
		matches, err := a.knowledge.Lookup(ctx, req.Text, entities)
		if err != nil {
			a.logger.Warn("Knowledge lookup degraded", map[string]interface{}{
				"sessionId": sessionID,
				"error":     err.Error(),
			})
			return
		}
		in.KnowledgeMatches = matches
	}()

	go func() {
		defer wg.Done()
		defer a.observeStage("verifier", time.Now())
		in.Trust = a.verifier.Verify(ctx, entities)
	}()

	go func() {
		defer wg.Done()
		defer a.observeStage("salary", time.Now())
		in.Salary = a.salary.Assess(entities.JobRole, entities.Compensation)
	}()

	wg.Wait()

	verdict := a.decision.Decide(sessionID, in)

	a.knowledge.Propose(ctx, entities, verdict, inferCategory(req.Text))

	elapsed := time.Since(start)
	metrics.AnalysesCompleted.WithLabelValues(string(verdict.Category)).Inc()
	if a.obs != nil {
		a.obs.RecordAnalysis(ctx, string(verdict.Category))
		a.obs.RecordAnalysisDuration(ctx, elapsed, string(verdict.Category))
	}

	a.logger.Info("Analysis completed", map[string]interface{}{
		"sessionId":  sessionID,
		"category":   string(verdict.Category),
		"confidence": verdict.Confidence,
		"durationMs": elapsed.Milliseconds(),
	})
	return verdict, nil
}

func (a *Analyzer) timedExtract(ctx context.Context, text string) *models.ExtractedEntities {
	defer a.observeStage("extract", time.Now())
	return a.extractor.Extract(ctx, text)
}

func (a *Analyzer) observeStage(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// inferCategory picks the scam family new indicators get filed under.
// Keyword-based; "other" when nothing distinctive shows up.
func inferCategory(text string) models.IndicatorCategory {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "crypto") || strings.Contains(lower, "bitcoin") ||
		strings.Contains(lower, "wallet") || strings.Contains(lower, "trading"):
		return models.CategoryCrypto
	case strings.Contains(lower, "rent") || strings.Contains(lower, "apartment") ||
		strings.Contains(lower, "lease") || strings.Contains(lower, "landlord"):
		return models.CategoryRental
	case strings.Contains(lower, "job") || strings.Contains(lower, "position") ||
		strings.Contains(lower, "salary") || strings.Contains(lower, "recruit") ||
		strings.Contains(lower, "hiring") || strings.Contains(lower, "interview"):
		return models.CategoryJob
	default:
		return models.CategoryOther
	}
}
