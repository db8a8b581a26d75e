// internal/agents/knowledge/memory.go
package knowledge

import (
	"context"
	"sync"
	"time"

	"scam-analyzer/internal/models"
)

// MemoryStore is the in-process Store used by tests and by deployments that
// run without PostgreSQL. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[models.IndicatorKey]models.KnowledgeEntry
	decay   float64
	now     func() time.Time
}

func NewMemoryStore(decay float64) *MemoryStore {
	return &MemoryStore{
		entries: make(map[models.IndicatorKey]models.KnowledgeEntry),
		decay:   decay,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key models.IndicatorKey) (*models.KnowledgeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key.Value = NormalizeValue(key.Value)
	if e, ok := s.entries[key]; ok {
		return &e, nil
	}
	return nil, nil
}

func (s *MemoryStore) Confirm(ctx context.Context, indicatorType models.IndicatorType, value string, category models.IndicatorCategory) (*models.KnowledgeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.IndicatorKey{Type: indicatorType, Value: NormalizeValue(value)}
	e, ok := s.entries[key]
	if !ok {
		e = models.KnowledgeEntry{
			IndicatorType: indicatorType,
			Value:         key.Value,
			Category:      category,
			FirstSeen:     s.now(),
		}
	}
	e.ConfirmationCount++
	if c := ConfidenceAfter(s.decay, e.ConfirmationCount); c > e.Confidence {
		e.Confidence = c
	}
	s.entries[key] = e
	return &e, nil
}

func (s *MemoryStore) ByType(ctx context.Context, indicatorType models.IndicatorType) ([]models.KnowledgeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.KnowledgeEntry
	for _, e := range s.entries {
		if e.IndicatorType == indicatorType {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

// Seed installs an entry verbatim, for tests and the seeding tool.
func (s *MemoryStore) Seed(entry models.KnowledgeEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.Value = NormalizeValue(entry.Value)
	if entry.FirstSeen.IsZero() {
		entry.FirstSeen = s.now()
	}
	s.entries[entry.Key()] = entry
}
