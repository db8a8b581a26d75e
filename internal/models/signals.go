// internal/models/signals.go
package models

// Severity ranks a pattern rule.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// PatternMatch is one rule firing. MatchedSpan holds the triggering text
// fragment for text rules; MatchedEntity names the entity field for entity
// rules. Matches are returned in rule-definition order.
type PatternMatch struct {
	PatternID     string   `json:"patternId"`
	Severity      Severity `json:"severity"`
	MatchedSpan   string   `json:"matchedSpan,omitempty"`
	MatchedEntity string   `json:"matchedEntity,omitempty"`
	Description   string   `json:"description"`
}

// TrustLevel is the external verifier's classification.
type TrustLevel string

const (
	TrustHigh     TrustLevel = "high_trust"
	TrustModerate TrustLevel = "moderate_trust"
	TrustLow      TrustLevel = "low_trust"
	TrustHighRisk TrustLevel = "high_risk"
	// TrustUnknown is forced when the verifier is unavailable and must
	// contribute exactly zero to the risk score.
	TrustUnknown TrustLevel = "unknown"
)

// TrustAssessment is the verifier stage output.
type TrustAssessment struct {
	Level    TrustLevel `json:"level"`
	Evidence string     `json:"evidence,omitempty"`
	Sources  []string   `json:"sources,omitempty"`
}

// UnknownTrust is the verifier's degraded output.
func UnknownTrust(reason string) *TrustAssessment {
	return &TrustAssessment{Level: TrustUnknown, Evidence: reason}
}

// RiskLevel ranks the salary assessment.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// SalaryRange is an expected annual compensation band in USD.
type SalaryRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Midpoint of the range.
func (r SalaryRange) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

// SalaryAssessment is the salary reasoner output. DeviationRatio is
// offered / midpoint(expected); zero when no offer was stated.
type SalaryAssessment struct {
	Risk           RiskLevel   `json:"risk"`
	ExpectedRange  SalaryRange `json:"expectedRange"`
	OfferedAnnual  float64     `json:"offeredAnnual"`
	DeviationRatio float64     `json:"deviationRatio"`
	Explanation    string      `json:"explanation,omitempty"`
}
