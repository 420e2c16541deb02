package llm

import (
	"context"
	"errors"
	"strings"
)

// retryableFragments are matched against provider error text. gollm
// flattens provider responses into plain errors, so classification works
// on the message rather than a typed taxonomy.
var retryableFragments = []string{
	"rate limit",
	"429",
	"timeout",
	"timed out",
	"temporarily unavailable",
	"connection reset",
	"500", "502", "503", "504",
	"overloaded",
}

// IsRetryable reports whether a Generate error is worth repeating.
// Cancellation is never retryable; auth and request shaping failures are
// permanent; throttling, timeouts, and server faults are transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, frag := range []string{"401", "403", "api key", "unauthorized", "invalid request"} {
		if strings.Contains(msg, frag) {
			return false
		}
	}
	for _, frag := range retryableFragments {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
