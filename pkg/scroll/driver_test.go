package scroll

import (
	"context"
	"errors"
	"testing"
	"time"

	"tokgrab/pkg/config"
	errs "tokgrab/pkg/errors"
	"tokgrab/pkg/logger"
)

// fakeSurface serves a scripted extent sequence; the last value repeats
// once the script is exhausted
type fakeSurface struct {
	extents   []int64
	calls     int
	scrolls   []int64
	extentErr error
	scrollErr error
}

func (f *fakeSurface) Extent(ctx context.Context) (int64, error) {
	if f.extentErr != nil {
		return 0, f.extentErr
	}
	idx := f.calls
	if idx >= len(f.extents) {
		idx = len(f.extents) - 1
	}
	f.calls++
	return f.extents[idx], nil
}

func (f *fakeSurface) ScrollTo(ctx context.Context, extent int64) error {
	f.scrolls = append(f.scrolls, extent)
	return f.scrollErr
}

func (f *fakeSurface) Links(ctx context.Context) ([]string, error) {
	return nil, nil
}

// fakeClock advances by a fixed step on every reading
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func testScrollConfig() config.ScrollConfig {
	return config.ScrollConfig{
		PollInterval:  500 * time.Millisecond,
		SettleDelay:   time.Second,
		StallTimeout:  2 * time.Second,
		MaxRetries:    3,
		MaxIterations: 2000,
		ThrottleSlack: 200 * time.Millisecond,
	}
}

func newTestDriver(s *fakeSurface, cfg config.ScrollConfig) (*Driver, *logger.TestLogger) {
	log := logger.NewTestLogger()
	d := NewDriver(s, cfg, log)
	d.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return d, log
}

func TestRunRejectsUnknownMode(t *testing.T) {
	s := &fakeSurface{extents: []int64{100}}
	d, _ := newTestDriver(s, testScrollConfig())

	_, err := d.Run(context.Background(), nil, CallbackMode(42))
	if err == nil {
		t.Fatal("Expected error for unknown mode")
	}
	if !errs.IsType(err, errs.ErrorTypeInvalidArgument) {
		t.Errorf("Expected invalid_argument error, got %v", err)
	}
	if s.calls != 0 || len(s.scrolls) != 0 {
		t.Error("Expected rejection before any scrolling")
	}
}

func TestStalledSessionFiresModeNoneCallbackOnce(t *testing.T) {
	// Extent never grows: 3 retries plus the window timeout end the session
	s := &fakeSurface{extents: []int64{100, 100, 100, 100}}
	d, _ := newTestDriver(s, testScrollConfig())

	fired := 0
	cb := func(ctx context.Context) error {
		fired++
		return nil
	}

	result, err := d.Run(context.Background(), cb, ModeNone)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Outcome != OutcomeStalled {
		t.Errorf("Expected stalled outcome, got %s", result.Outcome)
	}
	if result.FinalExtent != 100 {
		t.Errorf("Expected final extent 100, got %d", result.FinalExtent)
	}
	if fired != 1 {
		t.Errorf("Expected callback to fire exactly once, fired %d times", fired)
	}
}

func TestRetryBudgetWithinStallWindow(t *testing.T) {
	s := &fakeSurface{extents: []int64{100}}
	d, _ := newTestDriver(s, testScrollConfig())

	_, err := d.Run(context.Background(), nil, ModeNone)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// One boundary scroll plus three re-issued commands; the fourth
	// poll only burns the remaining window
	if len(s.scrolls) != 4 {
		t.Fatalf("Expected 4 scroll commands (1 initial + 3 retries), got %d: %v", len(s.scrolls), s.scrolls)
	}
}

func TestGrowthThenStallRunsTwoIterations(t *testing.T) {
	// Growth on iteration 1, stall on iteration 2
	s := &fakeSurface{extents: []int64{100, 250, 250, 250}}
	d, _ := newTestDriver(s, testScrollConfig())

	result, err := d.Run(context.Background(), nil, ModeNone)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Iterations != 2 {
		t.Errorf("Expected exactly 2 outer iterations, got %d", result.Iterations)
	}
	if result.Outcome != OutcomeStalled {
		t.Errorf("Expected stalled outcome, got %s", result.Outcome)
	}
	if result.FinalExtent != 250 {
		t.Errorf("Expected final extent 250, got %d", result.FinalExtent)
	}
}

func TestEveryIterationCallback(t *testing.T) {
	// Two growth iterations, then a stall
	s := &fakeSurface{extents: []int64{100, 200, 200, 300, 300}}
	d, _ := newTestDriver(s, testScrollConfig())

	fired := 0
	cb := func(ctx context.Context) error {
		fired++
		return nil
	}

	result, err := d.Run(context.Background(), cb, ModeEveryIteration)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if fired != 2 {
		t.Errorf("Expected callback after each settled iteration (2), fired %d times", fired)
	}
	if result.Iterations != 3 {
		t.Errorf("Expected 3 outer iterations, got %d", result.Iterations)
	}
}

func TestSafetyCeiling(t *testing.T) {
	cfg := testScrollConfig()
	cfg.MaxIterations = 2

	// Every poll observes growth, so only the ceiling can end the run
	s := &fakeSurface{extents: []int64{100, 200, 200, 300}}
	d, _ := newTestDriver(s, cfg)

	fired := 0
	cb := func(ctx context.Context) error {
		fired++
		return nil
	}

	result, err := d.Run(context.Background(), cb, ModeNone)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Outcome != OutcomeCeiling {
		t.Errorf("Expected ceiling outcome, got %s", result.Outcome)
	}
	if result.Iterations != 2 {
		t.Errorf("Expected 2 iterations, got %d", result.Iterations)
	}
	// Ceiling is treated like a stall: the callback still fires
	if fired != 1 {
		t.Errorf("Expected callback to fire once after ceiling, fired %d times", fired)
	}
}

func TestCallbackErrorPropagates(t *testing.T) {
	s := &fakeSurface{extents: []int64{100, 200, 200}}
	d, _ := newTestDriver(s, testScrollConfig())

	boom := errors.New("callback exploded")
	cb := func(ctx context.Context) error { return boom }

	_, err := d.Run(context.Background(), cb, ModeEveryIteration)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected callback error to propagate, got %v", err)
	}
}

func TestModeNoneCallbackErrorPropagates(t *testing.T) {
	s := &fakeSurface{extents: []int64{100}}
	d, _ := newTestDriver(s, testScrollConfig())

	boom := errors.New("export failed")
	_, err := d.Run(context.Background(), func(ctx context.Context) error { return boom }, ModeNone)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected callback error to propagate, got %v", err)
	}
}

func TestNilCallbackIsAllowed(t *testing.T) {
	s := &fakeSurface{extents: []int64{100}}
	d, _ := newTestDriver(s, testScrollConfig())

	result, err := d.Run(context.Background(), nil, ModeNone)
	if err != nil {
		t.Fatalf("Run failed with nil callback: %v", err)
	}
	if result.Outcome != OutcomeStalled {
		t.Errorf("Expected stalled outcome, got %s", result.Outcome)
	}
}

func TestSurfaceErrorAbortsRun(t *testing.T) {
	s := &fakeSurface{extents: []int64{100}, extentErr: errs.New(errs.ErrorTypeSurface, "tab crashed")}
	d, _ := newTestDriver(s, testScrollConfig())

	fired := 0
	_, err := d.Run(context.Background(), func(ctx context.Context) error {
		fired++
		return nil
	}, ModeNone)

	if err == nil {
		t.Fatal("Expected surface error to propagate")
	}
	if fired != 0 {
		t.Error("Expected no callback after a failed run")
	}
}

func TestContextCancellationStopsSession(t *testing.T) {
	s := &fakeSurface{extents: []int64{100}}
	d, _ := newTestDriver(s, testScrollConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Run(ctx, nil, ModeNone)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestThrottleDetectionLogsWarning(t *testing.T) {
	s := &fakeSurface{extents: []int64{100}}
	log := logger.NewTestLogger()
	d := NewDriver(s, testScrollConfig(), log)
	d.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	// Every sleep appears to take 900ms against a 500ms request and
	// 200ms slack
	clock := &fakeClock{t: time.Unix(0, 0), step: 900 * time.Millisecond}
	d.now = clock.now

	result, err := d.Run(context.Background(), nil, ModeNone)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	warns := log.EntriesAt("warn")
	found := false
	for _, w := range warns {
		if w.Message == "scheduler throttling detected" {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected a throttle warning to be logged")
	}
	// Throttle detection never alters control flow
	if result.Outcome != OutcomeStalled {
		t.Errorf("Expected stalled outcome despite throttling, got %s", result.Outcome)
	}
}
