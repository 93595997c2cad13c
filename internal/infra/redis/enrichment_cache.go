package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/draftops/outreach-engine/internal/domain"
)

const enrichmentKeyPrefix = "enrichment:"

// EnrichmentCache stores per-domain analysis results so repeat batch runs
// reuse one lookup per company. Only successful results are cached; a
// manual domain refresh bypasses and rewrites the entry.
type EnrichmentCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewEnrichmentCache(client *goredis.Client, ttl time.Duration) (*EnrichmentCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &EnrichmentCache{client: client, ttl: ttl}, nil
}

// Get returns the cached result for a domain and whether it was present.
// A decode failure is treated as a miss, not an error.
func (c *EnrichmentCache) Get(ctx context.Context, domainName string) (*domain.EnrichmentResult, bool, error) {
	key, err := c.key(domainName)
	if err != nil {
		return nil, false, err
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read enrichment cache: %w", err)
	}

	var result domain.EnrichmentResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, nil
	}
	return &result, true, nil
}

func (c *EnrichmentCache) Set(ctx context.Context, domainName string, result *domain.EnrichmentResult) error {
	key, err := c.key(domainName)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("enrichment result is required")
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode enrichment result: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write enrichment cache: %w", err)
	}
	return nil
}

func (c *EnrichmentCache) Delete(ctx context.Context, domainName string) error {
	key, err := c.key(domainName)
	if err != nil {
		return err
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to drop enrichment cache entry: %w", err)
	}
	return nil
}

func (c *EnrichmentCache) key(domainName string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(domainName))
	if normalized == "" {
		return "", fmt.Errorf("domain is required")
	}
	return enrichmentKeyPrefix + normalized, nil
}
