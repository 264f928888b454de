package retry

// Bounded retry with plain exponential backoff. The delay before attempt
// k+1 is InitialDelay doubled k-1 times; there is no jitter and no delay
// after the final attempt. Do swallows the per-attempt errors (they go to
// the log) and reports exhaustion through its second return value, which
// lets callers treat a failed operation as a soft miss instead of an error.

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sonic-minter/internal/infra/log"

	"go.uber.org/zap"
)

type Options struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// HTTPError is returned by API clients for non-2xx responses so callers can
// branch on the status code and see what the server said.
type HTTPError struct {
	StatusCode int
	Body       []byte
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error: <nil>"
	}
	if len(e.Body) == 0 {
		return fmt.Sprintf("http error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("http error (%d): %s", e.StatusCode, string(e.Body))
}

// ParseRetryAfter parses a Retry-After header value, either delta-seconds or
// an HTTP date. Unparseable or past values come back as 0.
func ParseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	layouts := []string{time.RFC1123, time.RFC1123Z, time.RFC850, time.ANSIC}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			d := time.Until(t)
			if d < 0 {
				return 0
			}
			return d
		}
	}
	return 0
}

// Delay returns the pause inserted after the given 1-based failed attempt.
func (o Options) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return o.InitialDelay << (attempt - 1)
}

// wait is a hook point for tests.
var wait = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn up to opts.MaxAttempts times, pausing opts.Delay(k) after
// failed attempt k. On success it returns the value and true. When every
// attempt fails, or the context is cancelled, it returns the zero value and
// false; the individual errors are only visible in the log.
func Do[T any](ctx context.Context, operation string, opts Options, fn func() (T, error)) (T, bool) {
	var zero T
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = time.Second
	}

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			log.LogWarn("Retry aborted by context",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Error(ctx.Err()))
			return zero, false
		}

		v, err := fn()
		if err == nil {
			if attempt > 1 {
				log.LogInfo("Operation succeeded after retry",
					zap.String("operation", operation),
					zap.Int("attempt", attempt))
			}
			return v, true
		}

		fields := []zap.Field{
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", opts.MaxAttempts),
			zap.Error(err),
		}
		var he *HTTPError
		if errors.As(err, &he) && he.RetryAfter > 0 {
			fields = append(fields, zap.Duration("retry_after", he.RetryAfter))
		}

		if attempt == opts.MaxAttempts {
			log.LogError("Operation failed, attempts exhausted", fields...)
			return zero, false
		}

		delay := opts.Delay(attempt)
		log.LogWarn("Operation failed, retrying",
			append(fields, zap.Duration("next_delay", delay))...)

		if err := wait(ctx, delay); err != nil {
			log.LogWarn("Retry aborted by context",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return zero, false
		}
	}

	return zero, false
}
