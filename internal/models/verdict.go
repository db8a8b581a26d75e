// internal/models/verdict.go
package models

// VerdictCategory is the final classification of an analyzed message.
type VerdictCategory string

const (
	VerdictSafe    VerdictCategory = "Safe"
	VerdictWarning VerdictCategory = "Warning"
	VerdictFake    VerdictCategory = "Fake"
)

// Verdict is the single structured result of one analysis. Immutable once
// returned. Signals maps each contributing stage name to its raw sub-result.
type Verdict struct {
	SessionID   string                 `json:"sessionId"`
	Category    VerdictCategory        `json:"category"`
	Confidence  float64                `json:"confidence"`
	Summary     string                 `json:"summary"`
	Explanation string                 `json:"explanation"`
	RedFlags    []string               `json:"redFlags,omitempty"`
	Signals     map[string]interface{} `json:"signals,omitempty"`
}
