package scroll

import (
	"time"

	"github.com/google/uuid"
)

// session tracks the counters that bound one harvest run. It lives for
// exactly one Driver.Run call and is never shared.
type session struct {
	id string

	// previousExtent is the last observed content extent
	previousExtent int64

	// loops counts outer iterations against the safety ceiling
	loops int

	// retries counts re-issued scroll commands within the current
	// stall window; reset every outer iteration
	retries int

	// accumulatedWait is how much of the current stall window has
	// been spent polling
	accumulatedWait time.Duration
}

func newSession() *session {
	return &session{id: uuid.NewString()}
}

// resetWindow starts a fresh stall-detection window
func (s *session) resetWindow() {
	s.retries = 0
	s.accumulatedWait = 0
}
