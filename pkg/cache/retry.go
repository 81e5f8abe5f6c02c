package cache

import (
	"context"
	"time"
)

// RetryingCache wraps a backend and retries operations that fail with a
// Retryable error. Networked backends (Redis) mark transient failures that
// way, so a brief connection blip does not fail a whole pipeline run.
// Misses are not errors and are never retried.
type RetryingCache struct {
	inner Cache
}

// NewRetrying wraps a backend with retry-on-transient-failure semantics.
func NewRetrying(inner Cache) Cache {
	return &RetryingCache{inner: inner}
}

// Get retrieves a value, retrying transient backend failures.
func (c *RetryingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	var hit bool
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = c.inner.Get(ctx, key)
		return err
	})
	return data, hit, err
}

// Set stores a value, retrying transient backend failures.
func (c *RetryingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RetryWithBackoff(ctx, func() error {
		return c.inner.Set(ctx, key, data, ttl)
	})
}

// Delete removes a value, retrying transient backend failures.
func (c *RetryingCache) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, func() error {
		return c.inner.Delete(ctx, key)
	})
}

// Close closes the wrapped backend.
func (c *RetryingCache) Close() error {
	return c.inner.Close()
}

// Ensure RetryingCache implements Cache.
var _ Cache = (*RetryingCache)(nil)
