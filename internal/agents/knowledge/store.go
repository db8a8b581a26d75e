// internal/agents/knowledge/store.go
package knowledge

import (
	"context"
	"math"
	"strings"

	"scam-analyzer/internal/models"
)

// Store persists confirmed scam indicators. Confirm must be atomic under
// concurrent callers: the confirmation count increments exactly once per call
// and the stored confidence never decreases.
type Store interface {
	// Get returns the entry for key, or (nil, nil) when absent.
	Get(ctx context.Context, key models.IndicatorKey) (*models.KnowledgeEntry, error)

	// Confirm inserts the indicator with one confirmation, or atomically
	// increments the existing entry, and returns the stored state.
	Confirm(ctx context.Context, indicatorType models.IndicatorType, value string, category models.IndicatorCategory) (*models.KnowledgeEntry, error)

	// ByType lists all entries of one indicator type.
	ByType(ctx context.Context, indicatorType models.IndicatorType) ([]models.KnowledgeEntry, error)

	Close() error
}

// ConfidenceAfter is the saturating confidence curve: 1 - decay^n for n
// confirmations. Monotone in n, approaches 1, never exceeds it.
func ConfidenceAfter(decay float64, confirmations int) float64 {
	if confirmations <= 0 {
		return 0
	}
	c := 1 - math.Pow(decay, float64(confirmations))
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// NormalizeValue canonicalizes an indicator value for keying: lowercase,
// trimmed, inner whitespace collapsed.
func NormalizeValue(v string) string {
	return strings.Join(strings.Fields(strings.ToLower(v)), " ")
}
