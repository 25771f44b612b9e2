package app

import "time"

const defaultBeatInterval = 1000 * time.Millisecond

// Heartbeat announces the badge once after connecting and answers health
// requests as soon as they are flagged.
type Heartbeat struct {
	reporter *Reporter
	interval time.Duration
}

func NewHeartbeat(reporter *Reporter) *Heartbeat {
	return &Heartbeat{reporter: reporter, interval: defaultBeatInterval}
}

// Reset restarts the registration window, e.g. right after connecting.
func (h *Heartbeat) Reset(st *State, now time.Duration) {
	st.LastBeat = now
}

func (h *Heartbeat) Tick(st *State, now time.Duration) {
	if now-st.LastBeat > h.interval {
		st.LastBeat = now
		if st.RegistrationOwed {
			st.RegistrationOwed = false
			h.reporter.Register()
		}
	}

	if st.HealthRequested {
		st.HealthRequested = false
		h.reporter.Health()
	}
}
