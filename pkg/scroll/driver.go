// Package scroll drives an infinite-scroll feed to exhaustion. The
// driver repeatedly commands the surface to the current content
// boundary and waits for growth, with a bounded per-iteration retry
// budget, a wall-clock stall timeout, and a hard iteration ceiling.
// End-of-content and a stuck feed are deliberately indistinguishable:
// both end the session as a stall.
package scroll

import (
	"context"
	"time"

	"tokgrab/pkg/config"
	errs "tokgrab/pkg/errors"
	"tokgrab/pkg/logger"
	"tokgrab/pkg/retry"
	"tokgrab/pkg/surface"
)

// CallbackMode controls when the caller-supplied callback fires
type CallbackMode int

const (
	// ModeNone fires the callback exactly once, after the session ends
	ModeNone CallbackMode = iota
	// ModeEveryIteration fires the callback after each settled iteration
	ModeEveryIteration
)

func (m CallbackMode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeEveryIteration:
		return "every_iteration"
	default:
		return "unknown"
	}
}

// Callback is invoked per CallbackMode. A returned error aborts the
// whole run; the caller owns recovery.
type Callback func(ctx context.Context) error

// Outcome is the terminal state of a scroll session. Both outcomes are
// normal terminations, not errors.
type Outcome string

const (
	// OutcomeStalled means no growth was observed within the retry
	// and timeout budget, be it end of content or a stuck feed
	OutcomeStalled Outcome = "stalled"
	// OutcomeCeiling means the hard iteration ceiling was reached
	OutcomeCeiling Outcome = "ceiling"
)

// Result summarizes a finished scroll session
type Result struct {
	SessionID   string
	Iterations  int
	FinalExtent int64
	Outcome     Outcome
	Elapsed     time.Duration
}

// Driver runs the scroll loop against a rendering surface. There is
// exactly one in-flight operation at any time: every wait observes the
// settled result of the previous scroll command before the next one is
// issued.
type Driver struct {
	surface surface.Surface
	cfg     config.ScrollConfig
	logger  logger.Logger

	// sleep and now are swappable for tests
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewDriver creates a scroll driver with the given policy
func NewDriver(s surface.Surface, cfg config.ScrollConfig, log logger.Logger) *Driver {
	return &Driver{
		surface: s,
		cfg:     cfg,
		logger:  log,
		sleep:   retry.Wait,
		now:     time.Now,
	}
}

// Run scrolls the surface to exhaustion. The mode is validated before
// any scrolling happens; an unrecognized mode is an invalid_argument
// error. The context cancels the session between waits.
func (d *Driver) Run(ctx context.Context, cb Callback, mode CallbackMode) (Result, error) {
	switch mode {
	case ModeNone, ModeEveryIteration:
	default:
		return Result{}, errs.InvalidArgument("unrecognized callback mode %d", int(mode))
	}

	sess := newSession()
	start := d.now()
	log := d.logger.WithField("session", sess.id)

	log.InfoWithFields("scroll session starting", map[string]interface{}{
		"mode":           mode.String(),
		"poll_interval":  d.cfg.PollInterval,
		"stall_timeout":  d.cfg.StallTimeout,
		"max_retries":    d.cfg.MaxRetries,
		"max_iterations": d.cfg.MaxIterations,
	})

	outcome := OutcomeCeiling
	for sess.loops < d.cfg.MaxIterations {
		sess.loops++

		extent, err := d.surface.Extent(ctx)
		if err != nil {
			return Result{}, err
		}
		sess.previousExtent = extent

		if err := d.surface.ScrollTo(ctx, extent); err != nil {
			return Result{}, err
		}

		grown, err := d.waitForGrowth(ctx, sess, log)
		if err != nil {
			return Result{}, err
		}
		if !grown {
			outcome = OutcomeStalled
			break
		}

		// Let in-flight rendering finish before the next iteration
		if err := d.pause(ctx, d.cfg.SettleDelay); err != nil {
			return Result{}, err
		}

		if mode == ModeEveryIteration && cb != nil {
			if err := cb(ctx); err != nil {
				return Result{}, err
			}
		}
	}

	result := Result{
		SessionID:   sess.id,
		Iterations:  sess.loops,
		FinalExtent: sess.previousExtent,
		Outcome:     outcome,
		Elapsed:     d.now().Sub(start),
	}

	log.InfoWithFields("scroll session ended", map[string]interface{}{
		"outcome":      string(result.Outcome),
		"iterations":   result.Iterations,
		"final_extent": result.FinalExtent,
		"elapsed":      result.Elapsed,
	})

	if mode == ModeNone && cb != nil {
		if err := cb(ctx); err != nil {
			return Result{}, err
		}
	}

	return result, nil
}

// waitForGrowth polls the surface until the extent exceeds the one
// recorded at the top of the iteration. Within the stall window the
// scroll command is re-issued up to the retry budget; the window as a
// whole is bounded by the stall timeout regardless of retries.
func (d *Driver) waitForGrowth(ctx context.Context, sess *session, log logger.Logger) (bool, error) {
	sess.resetWindow()

	for sess.accumulatedWait < d.cfg.StallTimeout {
		if err := d.pause(ctx, d.cfg.PollInterval); err != nil {
			return false, err
		}
		sess.accumulatedWait += d.cfg.PollInterval

		extent, err := d.surface.Extent(ctx)
		if err != nil {
			return false, err
		}

		if extent > sess.previousExtent {
			log.DebugWithFields("content extent grew", map[string]interface{}{
				"iteration":       sess.loops,
				"previous_extent": sess.previousExtent,
				"current_extent":  extent,
			})
			sess.previousExtent = extent
			return true, nil
		}

		if sess.retries < d.cfg.MaxRetries {
			if err := d.surface.ScrollTo(ctx, extent); err != nil {
				return false, err
			}
			sess.retries++
			log.DebugWithFields("scroll command re-issued", map[string]interface{}{
				"iteration": sess.loops,
				"retry":     sess.retries,
				"extent":    extent,
			})
		}
	}

	return false, nil
}

// pause sleeps for the requested duration and flags host-scheduler
// contention when the actual sleep overruns the request by more than
// the configured slack. Detection is observability only; it never
// alters control flow.
func (d *Driver) pause(ctx context.Context, want time.Duration) error {
	before := d.now()
	if err := d.sleep(ctx, want); err != nil {
		return err
	}
	got := d.now().Sub(before)

	if got > want+d.cfg.ThrottleSlack {
		d.logger.WarnWithFields("scheduler throttling detected", map[string]interface{}{
			"requested": want,
			"actual":    got,
			"overrun":   got - want,
		})
	}
	return nil
}
