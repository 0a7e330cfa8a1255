package download

// RetryPolicy bounds the number of extra attempts after the first.
type RetryPolicy struct {
	maxRetries int
}

// DefaultMaxRetries is used when no retry count is configured.
const DefaultMaxRetries = 1

// NewRetryPolicy returns a policy allowing maxRetries extra attempts.
// Negative values are treated as zero.
func NewRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{maxRetries: max(0, maxRetries)}
}

// MaxRetries returns the configured bound.
func (p RetryPolicy) MaxRetries() int {
	return p.maxRetries
}

// MayRetry reports whether another attempt is permitted after attempt
// number attempt (1-based) failed.
func (p RetryPolicy) MayRetry(attempt int) bool {
	return attempt <= p.maxRetries
}
