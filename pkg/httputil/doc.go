// Package httputil provides the HTTP plumbing used by the basemap sources.
//
// [Client] issues GET requests with a shared User-Agent, classifies
// responses (404 is [ErrNotFound], 429 and 5xx are retryable), optionally
// waits on a token-bucket rate limiter, and caches response bodies in a
// [cache.Cache]. [Retry] runs an operation with exponential backoff,
// retrying only errors wrapped in [RetryableError].
//
// Defaults:
//
//   - Request timeout: 30 seconds
//   - Attempts: 3
//   - Initial backoff: 1 second, doubling; a Retry-After hint of up to 30
//     seconds wins when longer
package httputil
