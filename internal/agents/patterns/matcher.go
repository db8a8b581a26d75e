// internal/agents/patterns/matcher.go
package patterns

import (
	"fmt"
	"regexp"
	"strings"

	"scam-analyzer/internal/common/logger"
	"scam-analyzer/internal/models"
	"scam-analyzer/pkg/ruleset"
)

// Matcher evaluates a fixed rule catalog against extracted entities and the
// normalized message text. Matching is pure: no I/O, no clock, and identical
// input always yields identical matches in rule-definition order.
type Matcher struct {
	rules  []compiledRule
	logger logger.Logger
}

type compiledRule struct {
	def ruleset.PatternRuleDef
	re  *regexp.Regexp // nil for entity-target rules
}

// New compiles a rule catalog. A rule with an invalid trigger regex or an
// unknown target fails the whole catalog; rule files are operator-authored
// and a silent skip would hide the typo.
func New(defs []ruleset.PatternRuleDef, log logger.Logger) (*Matcher, error) {
	m := &Matcher{logger: log.WithFields(map[string]interface{}{"stage": "patterns"})}
	for _, def := range defs {
		cr := compiledRule{def: def}
		switch {
		case def.Target == "text":
			re, err := regexp.Compile(def.Trigger)
			if err != nil {
				return nil, fmt.Errorf("compile rule %q: %w", def.ID, err)
			}
			cr.re = re
		case def.Target == "fee", def.Target == "free_mail":
		case strings.HasPrefix(def.Target, "channel:") && def.Target != "channel:":
		default:
			return nil, fmt.Errorf("rule %q targets unknown entity field %q", def.ID, def.Target)
		}
		m.rules = append(m.rules, cr)
	}
	return m, nil
}

// NewDefault builds a matcher over the built-in catalog.
func NewDefault(log logger.Logger) *Matcher {
	m, err := New(DefaultRules(), log)
	if err != nil {
		// The built-in catalog is compile-checked by tests.
		panic(err)
	}
	return m
}

// NewFromFile loads an operator rule file, falling back to the built-in
// catalog when path is empty.
func NewFromFile(path string, log logger.Logger) (*Matcher, error) {
	if path == "" {
		return NewDefault(log), nil
	}
	rs, err := ruleset.LoadPatternRules(path)
	if err != nil {
		return nil, fmt.Errorf("load pattern rules %q: %w", path, err)
	}
	return New(rs.Rules, log)
}

// Match runs every rule. text must already be normalized by the extraction
// stage; entities may be empty but not nil.
func (m *Matcher) Match(text string, entities *models.ExtractedEntities) []models.PatternMatch {
	var matches []models.PatternMatch
	for _, cr := range m.rules {
		if pm, ok := cr.eval(text, entities); ok {
			matches = append(matches, pm)
		}
	}
	m.logger.Debug("pattern matching complete", map[string]interface{}{
		"rules":   len(m.rules),
		"matches": len(matches),
	})
	return matches
}

func (cr compiledRule) eval(text string, entities *models.ExtractedEntities) (models.PatternMatch, bool) {
	base := models.PatternMatch{
		PatternID:   cr.def.ID,
		Severity:    parseSeverity(cr.def.Severity),
		Description: cr.def.Description,
	}

	switch {
	case cr.def.Target == "text":
		span := cr.re.FindString(text)
		if span == "" {
			return models.PatternMatch{}, false
		}
		base.MatchedSpan = span
		return base, true

	case cr.def.Target == "fee":
		if !entities.HasFees() {
			return models.PatternMatch{}, false
		}
		base.MatchedEntity = "fees"
		return base, true

	case cr.def.Target == "free_mail":
		for _, em := range entities.Emails {
			if em.FreeMail {
				base.MatchedEntity = em.Address
				return base, true
			}
		}
		return models.PatternMatch{}, false

	case strings.HasPrefix(cr.def.Target, "channel:"):
		ch := models.ContactChannel(strings.TrimPrefix(cr.def.Target, "channel:"))
		if !entities.HasChannel(ch) {
			return models.PatternMatch{}, false
		}
		base.MatchedEntity = string(ch)
		return base, true
	}

	return models.PatternMatch{}, false
}

func parseSeverity(s string) models.Severity {
	switch models.Severity(s) {
	case models.SeverityMedium:
		return models.SeverityMedium
	case models.SeverityHigh:
		return models.SeverityHigh
	default:
		return models.SeverityLow
	}
}
