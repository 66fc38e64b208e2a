// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// scriptedClient returns the queued results in order, one per call.
type scriptedClient struct {
	results []scriptedResult
	calls   int
	prompts []string
}

type scriptedResult struct {
	text string
	err  error
}

func (c *scriptedClient) Generate(_ context.Context, _ string, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.calls >= len(c.results) {
		return "", fmt.Errorf("unexpected call %d", c.calls+1)
	}
	r := c.results[c.calls]
	c.calls++
	return r.text, r.err
}

// fakeClock drives the invoker's time without real sleeping. Sleeps
// advance the clock and are recorded for inspection.
type fakeClock struct {
	t      time.Time
	sleeps []time.Duration
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
	return nil
}

func newTestInvoker(client Client, spacing time.Duration) (*Invoker, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	inv := NewInvoker(client, spacing, nil)
	inv.now = clk.now
	inv.sleep = clk.sleep
	return inv, clk
}

func TestInvokeFirstCallSucceeds(t *testing.T) {
	client := &scriptedClient{results: []scriptedResult{{text: "output"}}}
	inv, clk := newTestInvoker(client, 4*time.Second)

	text, err := inv.Invoke(context.Background(), "model-a", "prompt", Policy{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if text != "output" {
		t.Errorf("text = %q, want %q", text, "output")
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1", client.calls)
	}
	// The first call ever has no predecessor, so no spacing sleep.
	if len(clk.sleeps) != 0 {
		t.Errorf("sleeps = %v, want none", clk.sleeps)
	}
}

func TestInvokeEnforcesSpacing(t *testing.T) {
	client := &scriptedClient{results: []scriptedResult{
		{text: "one"}, {text: "two"}, {text: "three"},
	}}
	inv, clk := newTestInvoker(client, 4*time.Second)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := inv.Invoke(ctx, "m", "p", Policy{}); err != nil {
			t.Fatalf("Invoke %d: %v", i, err)
		}
	}

	// Calls 2 and 3 each wait out the full spacing because the fake clock
	// only advances during sleeps.
	want := []time.Duration{4 * time.Second, 4 * time.Second}
	if len(clk.sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", clk.sleeps, want)
	}
	for i, d := range want {
		if clk.sleeps[i] != d {
			t.Errorf("sleep[%d] = %v, want %v", i, clk.sleeps[i], d)
		}
	}
}

func TestInvokeSkipsSpacingAfterGap(t *testing.T) {
	client := &scriptedClient{results: []scriptedResult{{text: "one"}, {text: "two"}}}
	inv, clk := newTestInvoker(client, 4*time.Second)

	ctx := context.Background()
	if _, err := inv.Invoke(ctx, "m", "p", Policy{}); err != nil {
		t.Fatal(err)
	}
	// More than the spacing elapses between calls.
	clk.t = clk.t.Add(10 * time.Second)
	if _, err := inv.Invoke(ctx, "m", "p", Policy{}); err != nil {
		t.Fatal(err)
	}
	if len(clk.sleeps) != 0 {
		t.Errorf("sleeps = %v, want none after a gap longer than the spacing", clk.sleeps)
	}
}

func TestInvokeRetriesThrottleThenSucceeds(t *testing.T) {
	throttle := &ThrottleError{Status: 429, Message: "quota"}
	client := &scriptedClient{results: []scriptedResult{
		{err: throttle}, {err: throttle}, {text: "recovered"},
	}}
	inv, clk := newTestInvoker(client, 0)

	p := Policy{MaxAttempts: 5, Wait: 40 * time.Second}
	text, err := inv.Invoke(context.Background(), "m", "p", p)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if text != "recovered" {
		t.Errorf("text = %q, want %q", text, "recovered")
	}
	if client.calls != 3 {
		t.Errorf("calls = %d, want 3", client.calls)
	}
	// One policy wait before each of the two retries.
	want := []time.Duration{40 * time.Second, 40 * time.Second}
	if len(clk.sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", clk.sleeps, want)
	}
	for i, d := range want {
		if clk.sleeps[i] != d {
			t.Errorf("sleep[%d] = %v, want %v", i, clk.sleeps[i], d)
		}
	}
}

func TestInvokeExhaustsAttempts(t *testing.T) {
	throttle := &ThrottleError{Status: 429, Message: "quota"}
	client := &scriptedClient{results: []scriptedResult{
		{err: throttle}, {err: throttle}, {err: throttle},
	}}
	inv, _ := newTestInvoker(client, 0)

	p := Policy{MaxAttempts: 3, Wait: time.Second}
	_, err := inv.Invoke(context.Background(), "m", "p", p)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %T, want *ExhaustedError", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", exhausted.Attempts)
	}
	if !errors.Is(err, throttle) {
		t.Error("ExhaustedError should wrap the last throttle error")
	}
	if client.calls != 3 {
		t.Errorf("calls = %d, want exactly 3", client.calls)
	}
}

func TestInvokeFatalErrorSurfacesImmediately(t *testing.T) {
	fatal := &RemoteError{Status: 400, Message: "bad request"}
	client := &scriptedClient{results: []scriptedResult{{err: fatal}}}
	inv, clk := newTestInvoker(client, 0)

	_, err := inv.Invoke(context.Background(), "m", "p", Policy{MaxAttempts: 5, Wait: time.Second})
	if !errors.Is(err, fatal) {
		t.Fatalf("error = %v, want the remote error unchanged", err)
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on fatal errors)", client.calls)
	}
	if len(clk.sleeps) != 0 {
		t.Errorf("sleeps = %v, want none", clk.sleeps)
	}
}

func TestInvokePolicyDefaults(t *testing.T) {
	p := Policy{}.withDefaults()
	if p.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", p.MaxAttempts, DefaultMaxAttempts)
	}
	if p.Wait != DefaultRetryWait {
		t.Errorf("Wait = %v, want %v", p.Wait, DefaultRetryWait)
	}
	if p.Retryable == nil {
		t.Error("Retryable should default to IsRetryable")
	}
}

func TestInvokeCustomRetryable(t *testing.T) {
	sentinel := errors.New("special transient")
	client := &scriptedClient{results: []scriptedResult{
		{err: sentinel}, {text: "ok"},
	}}
	inv, _ := newTestInvoker(client, 0)

	p := Policy{
		MaxAttempts: 3,
		Wait:        time.Second,
		Retryable:   func(err error) bool { return errors.Is(err, sentinel) },
	}
	text, err := inv.Invoke(context.Background(), "m", "p", p)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if text != "ok" {
		t.Errorf("text = %q, want %q", text, "ok")
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2", client.calls)
	}
}

func TestInvokeContextCancelledDuringWait(t *testing.T) {
	throttle := &ThrottleError{Status: 429, Message: "quota"}
	client := &scriptedClient{results: []scriptedResult{{err: throttle}}}
	inv, _ := newTestInvoker(client, 0)

	ctx, cancel := context.WithCancel(context.Background())
	inv.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := inv.Invoke(ctx, "m", "p", Policy{MaxAttempts: 3, Wait: time.Second})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1 (cancelled before retry)", client.calls)
	}
}

func TestInvokeZeroSpacingNeverSleeps(t *testing.T) {
	client := &scriptedClient{results: []scriptedResult{{text: "a"}, {text: "b"}}}
	inv, clk := newTestInvoker(client, 0)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := inv.Invoke(ctx, "m", "p", Policy{}); err != nil {
			t.Fatal(err)
		}
	}
	if len(clk.sleeps) != 0 {
		t.Errorf("sleeps = %v, want none with spacing disabled", clk.sleeps)
	}
}
