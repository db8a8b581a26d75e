// Package errors provides standardized error handling for the analysis pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Extraction errors: the extractor itself is total, these cover the
	// optional LLM-assisted extraction path.
	ErrCodeExtractionSchemaInvalid ErrorCode = "EXTRACTION_SCHEMA_INVALID"
	ErrCodeExtractionTimeout       ErrorCode = "EXTRACTION_TIMEOUT"

	// Reputation lookup errors (external verifier boundary).
	ErrCodeReputationUnavailable   ErrorCode = "REPUTATION_UNAVAILABLE"
	ErrCodeReputationLookupTimeout ErrorCode = "REPUTATION_LOOKUP_TIMEOUT"
	ErrCodeReputationQuotaExceeded ErrorCode = "REPUTATION_QUOTA_EXCEEDED"

	// Knowledge store errors.
	ErrCodeKnowledgeConnectionFailed ErrorCode = "KNOWLEDGE_CONNECTION_FAILED"
	ErrCodeKnowledgeLookupFailed     ErrorCode = "KNOWLEDGE_LOOKUP_FAILED"
	ErrCodeKnowledgeWriteFailed      ErrorCode = "KNOWLEDGE_WRITE_FAILED"

	// Report index errors.
	ErrCodeReportIndexUnavailable ErrorCode = "REPORT_INDEX_UNAVAILABLE"
	ErrCodeReportQueryFailed      ErrorCode = "REPORT_QUERY_FAILED"

	// Alerting errors.
	ErrCodeAlertDeliveryFailed ErrorCode = "ALERT_DELIVERY_FAILED"

	// Programming-invariant violations are the only class that escapes
	// analyze() as a hard failure.
	ErrCodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewExtractionSchemaInvalidError marks an LLM extraction response that failed
// schema validation. Non-retryable: the response is discarded, not re-requested.
func NewExtractionSchemaInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionSchemaInvalid,
		Message:   "LLM extraction response failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionTimeoutError marks an LLM extraction call that exceeded its budget.
func NewExtractionTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionTimeout,
		Message:   "LLM extraction timeout",
		Details:   "extraction call exceeded timeout threshold",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReputationUnavailableError creates the distinguishable "unavailable"
// condition for the reputation capability. The verifier maps it to trust=unknown.
func NewReputationUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReputationUnavailable,
		Message:   "Reputation lookup unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReputationLookupTimeoutError creates a non-retryable timeout error; the
// pipeline proceeds with trust=unknown instead of retrying.
func NewReputationLookupTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeReputationLookupTimeout,
		Message:   "Reputation lookup timeout",
		Details:   "lookup exceeded the configured verifier timeout",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReputationQuotaExceededError marks a rate-limited reputation source.
func NewReputationQuotaExceededError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReputationQuotaExceeded,
		Message:   "Reputation source quota exhausted",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewKnowledgeConnectionFailedError creates a retryable store connection error.
func NewKnowledgeConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeKnowledgeConnectionFailed,
		Message:   "Knowledge store connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewKnowledgeLookupFailedError creates a retryable lookup error.
func NewKnowledgeLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeKnowledgeLookupFailed,
		Message:   "Knowledge store lookup failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewKnowledgeWriteFailedError marks a dropped learning update. The verdict is
// unaffected; the update is skipped.
func NewKnowledgeWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeKnowledgeWriteFailed,
		Message:   "Knowledge store write failed, update skipped",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportIndexUnavailableError creates a retryable report index error.
func NewReportIndexUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportIndexUnavailable,
		Message:   "Scam report index unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportQueryFailedError creates a retryable report query error.
func NewReportQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportQueryFailed,
		Message:   "Scam report query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertDeliveryFailedError creates a retryable alert delivery error.
func NewAlertDeliveryFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertDeliveryFailed,
		Message:   "Alert delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvariantViolationError marks a defect, e.g. a pattern rule referencing a
// non-existent entity field. This is the only error class analyze() propagates.
func NewInvariantViolationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvariantViolation,
		Message:   "Pipeline invariant violated",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsInvariantViolation reports whether err is a hard programming-invariant
// failure that must escape analyze().
func IsInvariantViolation(err error) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == ErrCodeInvariantViolation
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "EXTRACTION"):
		return "EXTRACTION"
	case strings.Contains(codeStr, "REPUTATION"):
		return "VERIFIER"
	case strings.Contains(codeStr, "KNOWLEDGE"):
		return "KNOWLEDGE"
	case strings.Contains(codeStr, "REPORT"):
		return "REPORT_INDEX"
	case strings.Contains(codeStr, "ALERT"):
		return "ALERTING"
	case strings.Contains(codeStr, "INVARIANT"):
		return "DEFECT"
	default:
		return "OTHER"
	}
}
