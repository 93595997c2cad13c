package ratelimit

import "context"

// RateLimiter bounds outbound call throughput per named scope, e.g. the
// "enrich" scope for the company-analysis service.
type RateLimiter interface {
	Allow(ctx context.Context, scope string) (bool, error)
	Wait(ctx context.Context, scope string) error
}
