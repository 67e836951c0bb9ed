package services

import "time"

// ReconnectPolicy decides whether and when to retry after a retryable
// disconnect. The attempt counter itself lives on the session; the policy
// is pure math over it.
type ReconnectPolicy struct {
	Base        time.Duration
	Cap         time.Duration
	MaxAttempts int
}

// DefaultReconnectPolicy returns the standard backoff schedule:
// 1s, 2s, 4s, ... capped at 60s, for at most 10 attempts.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		Base:        time.Second,
		Cap:         60 * time.Second,
		MaxAttempts: 10,
	}
}

// ShouldRetry reports whether another attempt is admitted at the given
// attempt count
func (p ReconnectPolicy) ShouldRetry(attempt int) bool {
	return attempt < p.MaxAttempts
}

// Delay computes the backoff delay for the given attempt count
func (p ReconnectPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// Shift overflow past ~62 would wrap; the cap comparison below needs a
	// positive value, so clamp early.
	if attempt > 30 {
		return p.Cap
	}
	d := p.Base << uint(attempt)
	if d > p.Cap || d <= 0 {
		return p.Cap
	}
	return d
}
