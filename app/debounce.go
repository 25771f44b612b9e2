package app

import "time"

// DigitalInput is a raw logical input level, true meaning pressed.
type DigitalInput interface {
	Get() bool
}

// DigitalOutput is a binary actuator.
type DigitalOutput interface {
	Set(on bool)
}

// EdgeSource reports discrete press events. Reset takes the current level as
// settled, so a button already held must be released before it reports again.
type EdgeSource interface {
	Poll() bool
	Reset()
}

// Debouncer turns a noisy button level into press edges. A level change must
// hold for the settle window before it becomes the stable level; only a stable
// transition to pressed is reported.
type Debouncer struct {
	in     DigitalInput
	clock  Clock
	settle time.Duration

	stable    bool
	candidate bool
	since     time.Duration
}

func NewDebouncer(in DigitalInput, clock Clock, settle time.Duration) *Debouncer {
	d := &Debouncer{in: in, clock: clock, settle: settle}
	d.Reset()
	return d
}

func (d *Debouncer) Reset() {
	lvl := d.in.Get()
	d.stable = lvl
	d.candidate = lvl
	d.since = d.clock.Now()
}

// Poll samples the input and returns true at most once per press.
func (d *Debouncer) Poll() bool {
	raw := d.in.Get()
	now := d.clock.Now()

	if raw != d.candidate {
		d.candidate = raw
		d.since = now
		return false
	}
	if d.candidate == d.stable || now-d.since < d.settle {
		return false
	}
	d.stable = d.candidate
	return d.stable
}
