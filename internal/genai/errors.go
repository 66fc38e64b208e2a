// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ThrottleError is a transient rejection by the generation service due to
// call-volume quotas. It is expected to clear after waiting and is the
// primary retryable condition.
type ThrottleError struct {
	// Status is the HTTP status code when known (usually 429).
	Status int
	// Message is the service's error text.
	Message string
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("generation service throttled (%d): %s", e.Status, e.Message)
}

// RemoteError is a non-retryable service error: malformed request,
// authentication failure, or unsupported content.
type RemoteError struct {
	// Status is the HTTP status code when known.
	Status int
	// Message is the service's error text.
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("generation service error (%d): %s", e.Status, e.Message)
}

// ExhaustedError is returned after the retry ceiling is reached. It wraps
// the last underlying error.
type ExhaustedError struct {
	// Attempts is the total number of attempts made.
	Attempts int
	// Last is the error from the final attempt.
	Last error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// rateLimitFragments are matched against error text as a last resort for
// transports that do not expose typed errors. Typed classification via
// ThrottleError is always preferred.
var rateLimitFragments = []string{
	"429",
	"RESOURCE_EXHAUSTED",
	"quota",
	"rate limit",
}

// IsRetryable is the default retry classifier. Throttling and timeouts
// are retryable; everything else, including RemoteError, is fatal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var throttle *ThrottleError
	if errors.As(err, &throttle) {
		return true
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return false
	}

	// Transport-level timeouts retry under the same policy as throttling.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Text-fragment fallback for opaque transports.
	msg := strings.ToLower(err.Error())
	for _, fragment := range rateLimitFragments {
		if strings.Contains(msg, strings.ToLower(fragment)) {
			return true
		}
	}
	return false
}
