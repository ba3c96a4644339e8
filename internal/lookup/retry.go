package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// State is a step of the retry state machine.
type State int

// States of one Search call. Succeeded and GaveUp are terminal; Backoff
// is entered only after a 429.
const (
	Idle State = iota
	Requesting
	Backoff
	Succeeded
	GaveUp
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Backoff:
		return "backoff"
	case Succeeded:
		return "succeeded"
	case GaveUp:
		return "gave_up"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Limits used by NewRetrier. The backoff doubles after each 429.
const (
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 2 * time.Second
	DefaultPoliteDelay    = time.Second
)

// Retrier wraps a Searcher with rate-limit backoff and a polite delay after
// every call. Only 429 responses are retried.
type Retrier struct {
	Searcher       Searcher
	MaxAttempts    int
	InitialBackoff time.Duration
	PoliteDelay    time.Duration

	// Sleep waits for d or until ctx is done. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnTransition is called on every state change when set.
	OnTransition func(from, to State)
}

// NewRetrier returns a Retrier with the default limits.
func NewRetrier(s Searcher) *Retrier {
	return &Retrier{
		Searcher:       s,
		MaxAttempts:    DefaultMaxAttempts,
		InitialBackoff: DefaultInitialBackoff,
		PoliteDelay:    DefaultPoliteDelay,
		Sleep:          sleep,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Search runs q through the state machine. Exhausted retries return
// ErrRateLimited; any other failure is returned as is without a retry.
func (r *Retrier) Search(ctx context.Context, q Query) (*Volume, error) {
	vol, err := r.search(ctx, q)
	if ctx.Err() == nil {
		_ = r.sleep(ctx, r.PoliteDelay)
	}
	return vol, err
}

func (r *Retrier) search(ctx context.Context, q Query) (*Volume, error) {
	maxAttempts := r.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	delay := r.InitialBackoff

	var (
		vol     *Volume
		lastErr error
	)
	state := Idle
	attempt := 0

	for {
		switch state {
		case Idle:
			state = r.transition(state, Requesting)

		case Requesting:
			attempt++
			vol, lastErr = r.Searcher.Search(ctx, q)
			switch {
			case lastErr == nil:
				state = r.transition(state, Succeeded)
			case IsRateLimited(lastErr) && attempt < maxAttempts:
				slog.Warn("Rate limited, backing off", "query", q.String(), "attempt", attempt, "delay", delay)
				state = r.transition(state, Backoff)
			default:
				state = r.transition(state, GaveUp)
			}

		case Backoff:
			if err := r.sleep(ctx, delay); err != nil {
				lastErr = err
				state = r.transition(state, GaveUp)
				continue
			}
			delay *= 2
			state = r.transition(state, Requesting)

		case Succeeded:
			return vol, nil

		case GaveUp:
			if IsRateLimited(lastErr) {
				return nil, fmt.Errorf("%w after %d attempts: %w", ErrRateLimited, attempt, lastErr)
			}
			if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
				return nil, lastErr
			}
			return nil, fmt.Errorf("failed to search %q: %w", q.String(), lastErr)
		}
	}
}

func (r *Retrier) transition(from, to State) State {
	if r.OnTransition != nil {
		r.OnTransition(from, to)
	}
	return to
}

func (r *Retrier) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep == nil {
		return sleep(ctx, d)
	}
	return r.Sleep(ctx, d)
}
