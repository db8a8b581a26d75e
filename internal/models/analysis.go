// internal/models/analysis.go
package models

// AnalysisRequest is the immutable input to one analysis call.
type AnalysisRequest struct {
	Text    string             `json:"text"`
	JobRole string             `json:"jobRole,omitempty"`
	Context []ConversationTurn `json:"context,omitempty"`
}

// ConversationTurn is one prior request/verdict pair from the same
// conversation, oldest first.
type ConversationTurn struct {
	Text     string          `json:"text"`
	Category VerdictCategory `json:"category"`
}
