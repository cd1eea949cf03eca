package ui

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
)

// ScrollProgress shows a live spinner while a scroll session runs
type ScrollProgress struct {
	spin      *spinner.Spinner
	startTime time.Time
}

// NewScrollProgress creates a progress indicator. It stays inert in
// quiet mode.
func NewScrollProgress() *ScrollProgress {
	return &ScrollProgress{
		spin:      spinner.New(spinner.CharSets[9], 100*time.Millisecond),
		startTime: time.Now(),
	}
}

// Start begins the spinner with an initial message
func (p *ScrollProgress) Start(feedURL string) {
	if quiet {
		return
	}
	p.startTime = time.Now()
	p.spin.Suffix = fmt.Sprintf(" scrolling %s", feedURL)
	p.spin.Start()
}

// Update refreshes the spinner message with the current iteration and
// content extent
func (p *ScrollProgress) Update(iteration int, extent int64) {
	if quiet {
		return
	}
	p.spin.Suffix = fmt.Sprintf(" iteration %d, extent %d, elapsed %s",
		iteration, extent, time.Since(p.startTime).Round(time.Second))
}

// Stop halts the spinner and prints a final status line
func (p *ScrollProgress) Stop(outcome string, iterations int) {
	if quiet {
		return
	}
	p.spin.Stop()
	fmt.Printf("%s %s after %d iterations (%s)\n",
		Green("[DONE]"), outcome, iterations, time.Since(p.startTime).Round(time.Second))
}

// Fail halts the spinner and prints a failure line
func (p *ScrollProgress) Fail(err error) {
	p.spin.Stop()
	PrintError("harvest failed", err)
}
