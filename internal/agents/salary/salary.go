// internal/agents/salary/salary.go
package salary

import (
	"fmt"
	"sort"
	"strings"

	"scam-analyzer/internal/common/logger"
	"scam-analyzer/internal/models"
	"scam-analyzer/pkg/ruleset"

	"github.com/shopspring/decimal"
)

// Annualization multipliers for stated pay periods.
var periodMultipliers = map[models.PayPeriod]int64{
	models.PerHour:  2080,
	models.PerDay:   260,
	models.PerWeek:  52,
	models.PerMonth: 12,
	models.PerYear:  1,
}

// fillerTokens are dropped during role normalization before table lookup.
// Seniority qualifiers shift pay within a band, not across scam thresholds.
var fillerTokens = map[string]bool{
	"intern": true, "junior": true, "senior": true, "lead": true,
	"remote": true, "parttime": true, "part-time": true, "freelance": true,
	"online": true, "work-from-home": true,
}

// Reasoner scores an offered compensation against the expected band for the
// role. Pure and deterministic.
type Reasoner struct {
	table  *ruleset.SalaryTable
	logger logger.Logger
}

func New(table *ruleset.SalaryTable, log logger.Logger) *Reasoner {
	return &Reasoner{
		table:  table,
		logger: log.WithFields(map[string]interface{}{"stage": "salary"}),
	}
}

// NewFromFile loads an operator salary table, falling back to the built-in
// table when path is empty.
func NewFromFile(path string, log logger.Logger) (*Reasoner, error) {
	if path == "" {
		return New(DefaultTable(), log), nil
	}
	table, err := ruleset.LoadSalaryTable(path)
	if err != nil {
		return nil, fmt.Errorf("load salary table %q: %w", path, err)
	}
	return New(table, log), nil
}

// Assess compares the offer against the role's expected annual band. With no
// stated compensation the assessment is low risk with a zero deviation
// ratio, so it contributes nothing downstream. Amounts are treated as USD.
func (r *Reasoner) Assess(role string, comp *models.CompensationMention) *models.SalaryAssessment {
	band, matched := r.bandFor(role)
	expected := models.SalaryRange{Min: band.Min, Max: band.Max}

	if comp == nil {
		return &models.SalaryAssessment{
			Risk:          models.RiskLow,
			ExpectedRange: expected,
			Explanation:   "no compensation stated",
		}
	}

	annual := Annualize(comp)
	ratio := annual / expected.Midpoint()

	assessment := &models.SalaryAssessment{
		Risk:           riskFor(ratio),
		ExpectedRange:  expected,
		OfferedAnnual:  annual,
		DeviationRatio: ratio,
	}

	switch assessment.Risk {
	case models.RiskHigh:
		if ratio >= 1 {
			assessment.Explanation = fmt.Sprintf(
				"offered %.0f/year is %.1fx the expected midpoint for %q", annual, ratio, matched)
		} else {
			assessment.Explanation = fmt.Sprintf(
				"offered %.0f/year is far below the expected band for %q", annual, matched)
		}
	case models.RiskMedium:
		assessment.Explanation = fmt.Sprintf(
			"offered %.0f/year sits outside the expected band for %q", annual, matched)
	default:
		assessment.Explanation = fmt.Sprintf(
			"offered %.0f/year is within range for %q", annual, matched)
	}

	r.logger.Debug("salary assessed", map[string]interface{}{
		"role":   matched,
		"annual": annual,
		"ratio":  ratio,
		"risk":   string(assessment.Risk),
	})
	return assessment
}

// Annualize converts a stated pay mention to an annual figure.
func Annualize(comp *models.CompensationMention) float64 {
	mult, ok := periodMultipliers[comp.Period]
	if !ok {
		mult = 1
	}
	annual, _ := comp.Amount.Mul(decimal.NewFromInt(mult)).Float64()
	return annual
}

// bandFor resolves the expected band, returning the matched table key (or
// "any role" for the default band).
func (r *Reasoner) bandFor(role string) (ruleset.SalaryBand, string) {
	normalized := NormalizeRole(role)
	if normalized == "" {
		return r.table.Default, "any role"
	}
	if band, ok := r.table.Roles[normalized]; ok {
		return band, normalized
	}
	// A role like "data entry clerk" still matches the "data entry" band.
	// Keys are walked in sorted order so ties resolve the same way every
	// time.
	keys := make([]string, 0, len(r.table.Roles))
	for key := range r.table.Roles {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.Contains(normalized, key) {
			return r.table.Roles[key], key
		}
	}
	return r.table.Default, "any role"
}

// NormalizeRole lowercases and strips filler qualifiers.
func NormalizeRole(role string) string {
	var kept []string
	for _, tok := range strings.Fields(strings.ToLower(role)) {
		tok = strings.Trim(tok, ".,;:()")
		if tok == "" || fillerTokens[tok] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func riskFor(ratio float64) models.RiskLevel {
	switch {
	case ratio >= 2.0 || ratio <= 0.3:
		return models.RiskHigh
	case ratio >= 1.5 || ratio <= 0.5:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// DefaultTable is the built-in expected-band table, annual USD.
func DefaultTable() *ruleset.SalaryTable {
	return &ruleset.SalaryTable{
		Version: "builtin-1",
		Roles: map[string]ruleset.SalaryBand{
			"data entry":        {Min: 25000, Max: 38000},
			"virtual assistant": {Min: 28000, Max: 42000},
			"customer service":  {Min: 30000, Max: 45000},
			"mystery shopper":   {Min: 18000, Max: 28000},
			"driver":            {Min: 35000, Max: 55000},
			"teacher":           {Min: 40000, Max: 65000},
			"graphic designer":  {Min: 45000, Max: 70000},
			"accountant":        {Min: 55000, Max: 85000},
			"marketing manager": {Min: 65000, Max: 110000},
			"software engineer": {Min: 90000, Max: 150000},
			"data analyst":      {Min: 60000, Max: 95000},
		},
		Default: ruleset.SalaryBand{Min: 30000, Max: 70000},
	}
}
