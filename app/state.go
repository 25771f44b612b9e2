package app

import (
	"log"
	"time"

	"pager/models"
)

// State is the mutable state shared by the loop's components. It is owned by
// the Badge and only touched from the scheduler loop, so it carries no lock.
type State struct {
	// RegistrationOwed is true until the first heartbeat after connecting
	// announces the badge.
	RegistrationOwed bool
	// HealthRequested is set by a HealthCheck command and cleared once the
	// reply is published.
	HealthRequested bool

	Paging     models.PagingState
	FlashOn    bool
	LastToggle time.Duration

	LastBeat time.Duration
}

func NewState() *State {
	return &State{RegistrationOwed: true, Paging: models.PagingIdle}
}

// Clock reports monotonic time elapsed since boot.
type Clock interface {
	Now() time.Duration
}

type monotonicClock struct {
	start time.Time
}

// NewClock returns a Clock backed by the runtime monotonic clock.
func NewClock() Clock {
	return monotonicClock{start: time.Now()}
}

func (c monotonicClock) Now() time.Duration { return time.Since(c.start) }

func showLine(d Display, logger *log.Logger, line string) {
	if d == nil {
		return
	}
	if err := d.Show(line); err != nil {
		logger.Printf("ERROR: Display update failed: %v", err)
	}
}
