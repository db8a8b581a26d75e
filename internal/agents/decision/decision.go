// internal/agents/decision/decision.go
package decision

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"scam-analyzer/internal/common/config"
	"scam-analyzer/internal/common/logger"
	"scam-analyzer/internal/models"
)

// Stage ordering for explanation tie-breaks: when two contributions carry
// the same weight, the earlier pipeline stage is listed first.
const (
	stagePatterns = iota
	stageKnowledge
	stageTrust
	stageSalary
	stageContext
)

var stageNames = map[int]string{
	stagePatterns:  "patterns",
	stageKnowledge: "knowledge",
	stageTrust:     "trust",
	stageSalary:    "salary",
	stageContext:   "context",
}

// Inputs is the join point of the fan-out stages. Trust and Salary are
// always present (degraded stages produce unknown/low values, not nils);
// KnowledgeMatches is empty on a miss and confidence-descending otherwise.
type Inputs struct {
	Entities         *models.ExtractedEntities
	Matches          []models.PatternMatch
	KnowledgeMatches []models.KnowledgeEntry
	Trust            *models.TrustAssessment
	Salary           *models.SalaryAssessment
	Context          []models.ConversationTurn
}

// topKnowledge returns the strongest knowledge match, or nil.
func (in *Inputs) topKnowledge() *models.KnowledgeEntry {
	best := -1
	for i := range in.KnowledgeMatches {
		if best < 0 || in.KnowledgeMatches[i].Confidence > in.KnowledgeMatches[best].Confidence {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	return &in.KnowledgeMatches[best]
}

type contribution struct {
	stage  int
	label  string
	points float64
	detail string
}

// Aggregator folds stage outputs into one verdict. Pure given its inputs:
// the same Inputs always produce the same Verdict.
type Aggregator struct {
	config    config.DecisionConfig
	knowledge config.KnowledgeConfig
	logger    logger.Logger
}

func New(cfg config.DecisionConfig, kcfg config.KnowledgeConfig, log logger.Logger) *Aggregator {
	return &Aggregator{
		config:    cfg,
		knowledge: kcfg,
		logger:    log.WithFields(map[string]interface{}{"stage": "decision"}),
	}
}

// Decide scores the joined stage outputs and classifies the message.
//
// Two rules outrank the additive score: a knowledge match at or above the
// high-confidence threshold forces Fake, and the conjunction of a named
// company, a free-mail contact address, and an upfront fee forces Fake.
func (a *Aggregator) Decide(sessionID string, in *Inputs) *models.Verdict {
	contributions := a.collect(in)

	score := 0.0
	for _, c := range contributions {
		score += c.points
	}

	category := a.categorize(score)
	override := ""
	top := in.topKnowledge()

	if top != nil && top.Confidence >= a.knowledge.HighConfidenceThreshold {
		category = models.VerdictFake
		override = fmt.Sprintf("known scam indicator %q (%s)", top.Value, top.IndicatorType)
	} else if a.conjunction(in) && category != models.VerdictFake {
		category = models.VerdictFake
		override = "company offer with free-mail contact demanding an upfront fee"
	}

	confidence := a.confidence(category, score, in, override != "")

	verdict := &models.Verdict{
		SessionID:   sessionID,
		Category:    category,
		Confidence:  confidence,
		Summary:     a.summary(category, score, contributions, override),
		Explanation: explain(contributions),
		RedFlags:    redFlags(in),
		Signals: map[string]interface{}{
			"score":     score,
			"patterns":  in.Matches,
			"knowledge": in.KnowledgeMatches,
			"trust":     in.Trust,
			"salary":    in.Salary,
		},
	}

	a.logger.Info("verdict decided", map[string]interface{}{
		"session_id": sessionID,
		"category":   string(category),
		"score":      score,
		"confidence": confidence,
		"override":   override,
	})
	return verdict
}

func (a *Aggregator) collect(in *Inputs) []contribution {
	var out []contribution

	for _, m := range in.Matches {
		out = append(out, contribution{
			stage:  stagePatterns,
			label:  m.PatternID,
			points: a.severityWeight(m.Severity),
			detail: m.Description,
		})
	}
	if in.Entities != nil && in.Entities.HasFreeMailContact() {
		out = append(out, contribution{
			stage:  stagePatterns,
			label:  "free-mail-contact",
			points: a.config.FreeMailWeight,
			detail: "contact address is on a consumer mail provider",
		})
	}

	for _, entry := range in.KnowledgeMatches {
		out = append(out, contribution{
			stage:  stageKnowledge,
			label:  "known-" + string(entry.IndicatorType),
			points: a.config.KnowledgeWeight * entry.Confidence,
			detail: fmt.Sprintf("%s %q seen in %d confirmed scams", entry.IndicatorType, entry.Value, entry.ConfirmationCount),
		})
	}

	// Unknown trust contributes nothing, not even a zero-point line; an
	// unreachable verifier must be indistinguishable from no verifier.
	if in.Trust != nil && in.Trust.Level != models.TrustUnknown {
		out = append(out, contribution{
			stage:  stageTrust,
			label:  "reputation-" + string(in.Trust.Level),
			points: a.trustWeight(in.Trust.Level),
			detail: in.Trust.Evidence,
		})
	}

	if in.Salary != nil {
		switch in.Salary.Risk {
		case models.RiskHigh:
			out = append(out, contribution{
				stage:  stageSalary,
				label:  "salary-implausible",
				points: a.config.SalaryHighWeight,
				detail: in.Salary.Explanation,
			})
		case models.RiskMedium:
			out = append(out, contribution{
				stage:  stageSalary,
				label:  "salary-outlier",
				points: a.config.SalaryMediumWeight,
				detail: in.Salary.Explanation,
			})
		}
	}

	prior := 0
	for _, turn := range in.Context {
		if turn.Category == models.VerdictWarning || turn.Category == models.VerdictFake {
			prior++
		}
	}
	if prior > 0 {
		out = append(out, contribution{
			stage:  stageContext,
			label:  "conversation-history",
			points: a.config.ContextWeight * float64(prior),
			detail: fmt.Sprintf("%d earlier suspicious message(s) in this conversation", prior),
		})
	}

	return out
}

func (a *Aggregator) severityWeight(s models.Severity) float64 {
	switch s {
	case models.SeverityHigh:
		return a.config.PatternHighWeight
	case models.SeverityMedium:
		return a.config.PatternMediumWeight
	default:
		return a.config.PatternLowWeight
	}
}

func (a *Aggregator) trustWeight(level models.TrustLevel) float64 {
	switch level {
	case models.TrustHighRisk:
		return a.config.TrustHighRiskWeight
	case models.TrustLow:
		return a.config.TrustLowWeight
	case models.TrustModerate:
		return a.config.TrustModerateWeight
	case models.TrustHigh:
		return a.config.TrustHighWeight
	default:
		return 0
	}
}

// conjunction detects the classic advance-fee shape: a named company whose
// recruiter writes from a consumer mailbox and wants money up front.
func (a *Aggregator) conjunction(in *Inputs) bool {
	return in.Entities != nil &&
		in.Entities.CompanyName != "" &&
		in.Entities.HasFreeMailContact() &&
		in.Entities.HasFees()
}

func (a *Aggregator) categorize(score float64) models.VerdictCategory {
	switch {
	case score >= a.config.FakeThreshold:
		return models.VerdictFake
	case score >= a.config.WarningThreshold:
		return models.VerdictWarning
	default:
		return models.VerdictSafe
	}
}

// confidence maps the score into [0,1] deterministically, per category.
// Overridden verdicts get a floor of the knowledge threshold so the learning
// loop treats them as confirmations.
func (a *Aggregator) confidence(category models.VerdictCategory, score float64, in *Inputs, overridden bool) float64 {
	var c float64
	switch category {
	case models.VerdictFake:
		c = clamp01(0.6 + score/200)
	case models.VerdictWarning:
		span := a.config.FakeThreshold - a.config.WarningThreshold
		c = clamp01(0.5 + 0.4*(score-a.config.WarningThreshold)/span)
	default:
		c = clamp01(1 - score/(2*a.config.WarningThreshold))
	}

	if overridden && c < a.knowledge.HighConfidenceThreshold {
		c = a.knowledge.HighConfidenceThreshold
	}
	if top := in.topKnowledge(); top != nil && category == models.VerdictFake && top.Confidence > c {
		c = top.Confidence
	}
	return math.Round(c*1000) / 1000
}

// explain renders contributions sorted by absolute weight, strongest first,
// with pipeline-stage order breaking ties.
func explain(contributions []contribution) string {
	sorted := make([]contribution, len(contributions))
	copy(sorted, contributions)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai, aj := math.Abs(sorted[i].points), math.Abs(sorted[j].points)
		if ai != aj {
			return ai > aj
		}
		return sorted[i].stage < sorted[j].stage
	})

	parts := make([]string, 0, len(sorted))
	for _, c := range sorted {
		parts = append(parts, fmt.Sprintf("%s [%s, %+.1f]: %s",
			c.label, stageNames[c.stage], c.points, c.detail))
	}
	if len(parts) == 0 {
		return "no risk signals detected"
	}
	return strings.Join(parts, "; ")
}

func (a *Aggregator) summary(category models.VerdictCategory, score float64, contributions []contribution, override string) string {
	if override != "" {
		return fmt.Sprintf("%s: %s", category, override)
	}
	risky := 0
	for _, c := range contributions {
		if c.points > 0 {
			risky++
		}
	}
	return fmt.Sprintf("%s (score %.1f, %d risk signal(s))", category, score, risky)
}

func redFlags(in *Inputs) []string {
	var flags []string
	for _, m := range in.Matches {
		flags = append(flags, m.Description)
	}
	for _, entry := range in.KnowledgeMatches {
		flags = append(flags, fmt.Sprintf("matches known scam %s %q", entry.IndicatorType, entry.Value))
	}
	if in.Trust != nil && (in.Trust.Level == models.TrustHighRisk || in.Trust.Level == models.TrustLow) {
		flags = append(flags, in.Trust.Evidence)
	}
	if in.Salary != nil && in.Salary.Risk == models.RiskHigh {
		flags = append(flags, in.Salary.Explanation)
	}
	return flags
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
