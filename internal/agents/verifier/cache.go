// internal/agents/verifier/cache.go
package verifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"scam-analyzer/internal/models"

	"github.com/redis/go-redis/v9"
)

// Cache stores finished trust assessments so repeated lookups for the same
// subject skip the external search. Misses and backend failures look the
// same to the caller: (nil, false).
type Cache interface {
	Get(ctx context.Context, key string) (*models.TrustAssessment, bool)
	Set(ctx context.Context, key string, assessment *models.TrustAssessment, ttl time.Duration)
}

// CacheKey derives a stable key from the verification subject and the
// domains in scope. Order-insensitive in the domains.
func CacheKey(subject string, domains []string) string {
	parts := make([]string, 0, len(domains)+1)
	parts = append(parts, strings.ToLower(strings.TrimSpace(subject)))
	for _, d := range domains {
		parts = append(parts, strings.ToLower(d))
	}
	sort.Strings(parts[1:])
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return "verifier:trust:" + hex.EncodeToString(sum[:16])
}

// RedisCache backs the cache with Redis.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.TrustAssessment, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var assessment models.TrustAssessment
	if err := json.Unmarshal(data, &assessment); err != nil {
		return nil, false
	}
	return &assessment, true
}

func (c *RedisCache) Set(ctx context.Context, key string, assessment *models.TrustAssessment, ttl time.Duration) {
	data, err := json.Marshal(assessment)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, data, ttl)
}
