package minter

// Runner executes a batch of mint attempts with a fixed pacing delay
// between them. A failed attempt is recorded and, unless configured
// otherwise, the batch moves on; nothing in here terminates the process.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sonic-minter/internal/infra/log"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Attempt records one batch iteration.
type Attempt struct {
	ID        string
	Index     int
	Signature string
	Err       error
	Duration  time.Duration
}

// Summary aggregates a finished batch.
type Summary struct {
	Requested int
	Succeeded int
	Failed    int
	Attempts  []Attempt
}

type RunnerOptions struct {
	// AttemptDelay is slept between consecutive attempts. There is no
	// delay before the first attempt or after the last one.
	AttemptDelay    time.Duration
	ContinueOnError bool
}

type Runner struct {
	minter *Minter
	opts   RunnerOptions

	// sleep is swapped out by tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRunner(m *Minter, opts RunnerOptions) *Runner {
	return &Runner{
		minter: m,
		opts:   opts,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
	}
}

// Run performs count mint attempts and returns the batch summary. It
// returns early on context cancellation or, when ContinueOnError is off,
// after the first failed attempt; the summary always covers whatever ran.
func (r *Runner) Run(ctx context.Context, count int) Summary {
	summary := Summary{Requested: count}
	if count <= 0 {
		return summary
	}

	log.LogInfo("Starting mint batch", zap.Int("count", count))

	for i := 1; i <= count; i++ {
		if i > 1 {
			if err := r.sleep(ctx, r.opts.AttemptDelay); err != nil {
				log.LogWarn("Mint batch interrupted",
					zap.Int("completed", len(summary.Attempts)),
					zap.Int("requested", count),
					zap.Error(err))
				return summary
			}
		}

		attempt := Attempt{ID: uuid.NewString(), Index: i}
		startTime := time.Now()
		attempt.Signature, attempt.Err = r.minter.Mint(ctx)
		attempt.Duration = time.Since(startTime)
		summary.Attempts = append(summary.Attempts, attempt)

		if attempt.Err != nil {
			summary.Failed++
			log.LogError(fmt.Sprintf("Mint attempt %d/%d failed", i, count),
				zap.String("attempt_id", attempt.ID),
				zap.Error(attempt.Err))
			if !r.opts.ContinueOnError {
				log.LogWarn("Stopping mint batch after failure",
					zap.Int("completed", len(summary.Attempts)),
					zap.Int("requested", count))
				break
			}
		} else {
			summary.Succeeded++
			log.LogInfo(fmt.Sprintf("Mint attempt %d/%d succeeded", i, count),
				zap.String("attempt_id", attempt.ID),
				zap.String("signature", attempt.Signature))
		}

		if ctx.Err() != nil {
			break
		}
	}

	return summary
}

// Log writes the batch outcome at a level matching the result.
func (s Summary) Log() {
	fields := []zap.Field{
		zap.Int("requested", s.Requested),
		zap.Int("succeeded", s.Succeeded),
		zap.Int("failed", s.Failed),
	}
	switch {
	case s.Failed == 0 && s.Succeeded > 0:
		log.LogSuccess("Mint batch finished", fields...)
	case s.Succeeded == 0 && s.Failed > 0:
		log.LogError("Mint batch finished, no successful mints", fields...)
	default:
		log.LogWarn("Mint batch finished with failures", fields...)
	}
}

// Text renders a short report suitable for notifications.
func (s Summary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mint batch: %d/%d succeeded", s.Succeeded, s.Requested)
	for _, a := range s.Attempts {
		if a.Err != nil {
			fmt.Fprintf(&b, "\n#%d failed: %v", a.Index, a.Err)
		} else {
			fmt.Fprintf(&b, "\n#%d %s", a.Index, a.Signature)
		}
	}
	return b.String()
}
