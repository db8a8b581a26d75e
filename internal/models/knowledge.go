// internal/models/knowledge.go
package models

import "time"

// IndicatorType classifies what a knowledge entry recognizes.
type IndicatorType string

const (
	IndicatorDomain     IndicatorType = "domain"
	IndicatorCompany    IndicatorType = "company_name"
	IndicatorFeePattern IndicatorType = "fee_pattern"
	IndicatorPhrase     IndicatorType = "phrase"
)

// IndicatorCategory groups indicators by scam family.
type IndicatorCategory string

const (
	CategoryJob    IndicatorCategory = "job"
	CategoryCrypto IndicatorCategory = "crypto"
	CategoryRental IndicatorCategory = "rental"
	CategoryOther  IndicatorCategory = "other"
)

// KnowledgeEntry is one confirmed scam indicator. Entries are keyed by
// (IndicatorType, normalized Value); ConfirmationCount increments
// monotonically and Confidence never decreases within a process lifetime.
type KnowledgeEntry struct {
	IndicatorType     IndicatorType     `json:"indicatorType"`
	Value             string            `json:"value"`
	Category          IndicatorCategory `json:"category"`
	Confidence        float64           `json:"confidence"`
	FirstSeen         time.Time         `json:"firstSeen"`
	ConfirmationCount int               `json:"confirmationCount"`
}

// Key returns the store key for the entry.
func (e KnowledgeEntry) Key() IndicatorKey {
	return IndicatorKey{Type: e.IndicatorType, Value: e.Value}
}

// IndicatorKey identifies an entry in the knowledge base.
type IndicatorKey struct {
	Type  IndicatorType
	Value string
}
