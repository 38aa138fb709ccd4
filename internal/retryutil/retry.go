package retryutil

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	defaultRetryDelay    = 500 * time.Millisecond
	defaultRetryAttempts = 2
)

// Policy bounds Do. Delay doubles after every failed attempt.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Permanent marks an error that must not be retried.
type Permanent struct{ Err error }

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

func NewPermanent(err error) error {
	if err == nil {
		return nil
	}
	return &Permanent{Err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the attempts are
// used up, or ctx is done. The last error is returned unwrapped.
func Do(ctx context.Context, logger *slog.Logger, name string, p Policy, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	if p.Attempts <= 0 {
		p.Attempts = defaultRetryAttempts
	}
	if p.Delay <= 0 {
		p.Delay = defaultRetryDelay
	}

	delay := p.Delay
	var err error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		var perm *Permanent
		if errors.As(err, &perm) {
			return perm.Err
		}
		if attempt == p.Attempts || ctx.Err() != nil {
			break
		}
		if logger != nil {
			logger.Debug(name+"_retry_scheduled", "attempt", attempt, "delay", delay.String(), "error", err.Error())
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		delay *= 2
	}
	if logger != nil {
		logger.Warn(name+"_retry_failed", "attempts", p.Attempts, "error", err.Error())
	}
	return err
}
