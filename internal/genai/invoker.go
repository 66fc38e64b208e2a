// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genai wraps a remote text-generation service with retry on
// throttling and fixed inter-call spacing. All generation calls in the
// pipeline funnel through one Invoker so the spacing guarantee holds
// across documents and stages.
package genai

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reference defaults for the advanced tier and the shared call spacing.
const (
	DefaultMaxAttempts = 5
	DefaultRetryWait   = 40 * time.Second
	DefaultCallSpacing = 4 * time.Second
)

// Client is the capability-style generation client supplied externally.
// Implementations perform exactly one call per Generate invocation and
// map service throttling to *ThrottleError.
type Client interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Policy configures retry behavior for one call site.
type Policy struct {
	// MaxAttempts is the total attempt ceiling (default 5).
	MaxAttempts int

	// Wait is the fixed delay between attempts (default 40s).
	Wait time.Duration

	// Retryable decides whether an error warrants another attempt.
	// Nil selects IsRetryable.
	Retryable func(error) bool
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Wait <= 0 {
		p.Wait = DefaultRetryWait
	}
	if p.Retryable == nil {
		p.Retryable = IsRetryable
	}
	return p
}

// Invoker performs one logical generation call at a time, masking
// transient throttling and enforcing a minimum spacing between any two
// calls it issues. The spacing clock is mutex-guarded so an invoker
// shared across a batch keeps the steady-state rate guarantee even if a
// caller later parallelizes documents.
type Invoker struct {
	client  Client
	spacing time.Duration
	log     *zap.Logger

	mu       sync.Mutex
	lastCall time.Time

	// now and sleep are swapped by tests to avoid real waiting.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewInvoker wraps client with the given inter-call spacing. A spacing of
// zero disables pacing. A nil logger disables retry logging.
func NewInvoker(client Client, spacing time.Duration, log *zap.Logger) *Invoker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Invoker{
		client:  client,
		spacing: spacing,
		log:     log,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// Invoke performs the generation call under the given policy. Retryable
// errors are retried with the policy's fixed wait up to MaxAttempts total
// attempts, then escalated to *ExhaustedError wrapping the last error.
// Non-retryable errors surface immediately. Each attempt, including the
// first, waits out the inter-call spacing.
func (inv *Invoker) Invoke(ctx context.Context, model, prompt string, p Policy) (string, error) {
	p = p.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			inv.log.Info("retrying generation call",
				zap.String("model", model),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", p.MaxAttempts),
				zap.Duration("wait", p.Wait),
			)
			if err := inv.sleep(ctx, p.Wait); err != nil {
				return "", err
			}
		}

		if err := inv.pace(ctx); err != nil {
			return "", err
		}

		text, err := inv.client.Generate(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		if !p.Retryable(err) {
			return "", err
		}
		lastErr = err
	}

	return "", &ExhaustedError{Attempts: p.MaxAttempts, Last: lastErr}
}

// pace blocks until at least the configured spacing has elapsed since the
// previous call, then records the new call timestamp. The mutex is held
// across the wait so concurrent callers serialize on the spacing clock.
func (inv *Invoker) pace(ctx context.Context) error {
	if inv.spacing <= 0 {
		return nil
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	if !inv.lastCall.IsZero() {
		if wait := inv.spacing - inv.now().Sub(inv.lastCall); wait > 0 {
			if err := inv.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	inv.lastCall = inv.now()
	return nil
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
