package app

import (
	"log"
	"time"

	"pager/models"
)

const defaultCadence = 100 * time.Millisecond

// Pager drives the alert outputs while a page is active and resolves the page
// from the accept and refuse buttons.
type Pager struct {
	accept  EdgeSource
	refuse  EdgeSource
	flash   DigitalOutput
	vibrate DigitalOutput

	reporter *Reporter
	display  Display
	logger   *log.Logger
	cadence  time.Duration

	// driven mirrors the level last written to both outputs.
	driven bool
}

func NewPager(accept, refuse EdgeSource, flash, vibrate DigitalOutput, reporter *Reporter, display Display, logger *log.Logger) *Pager {
	if logger == nil {
		logger = log.Default()
	}
	return &Pager{
		accept:   accept,
		refuse:   refuse,
		flash:    flash,
		vibrate:  vibrate,
		reporter: reporter,
		display:  display,
		logger:   logger,
		cadence:  defaultCadence,
	}
}

// Assert starts a page. Asserting an active page changes nothing.
func (p *Pager) Assert(st *State, now time.Duration) {
	if st.Paging == models.PagingActive {
		return
	}
	// Buttons are not sampled while idle; presses from before the page
	// must not answer it.
	p.accept.Reset()
	p.refuse.Reset()

	st.Paging = models.PagingActive
	st.FlashOn = true
	st.LastToggle = now
	p.drive(true)
	p.show("Page request")
	p.reporter.Emit(models.EventPageStarted, models.ResponseNone)
}

// Cancel ends a page without a response and deasserts the outputs at once.
func (p *Pager) Cancel(st *State) {
	wasActive := st.Paging == models.PagingActive
	p.idle(st)
	if wasActive {
		p.reporter.Emit(models.EventPageCancelled, models.ResponseNone)
	}
}

// Tick polls the buttons and advances the flash/vibrate cadence.
func (p *Pager) Tick(st *State, now time.Duration) {
	if st.Paging != models.PagingActive {
		p.drive(false)
		return
	}

	// Both channels are sampled so a simultaneous refuse edge is consumed;
	// accept is evaluated first and wins.
	accepted := p.accept.Poll()
	refused := p.refuse.Poll()
	switch {
	case accepted:
		p.resolve(st, models.ResponseAccept, "Accept", models.EventPageAccepted)
		return
	case refused:
		p.resolve(st, models.ResponseRefuse, "Refuse", models.EventPageRefused)
		return
	}

	if now-st.LastToggle >= p.cadence {
		st.LastToggle = now
		st.FlashOn = !st.FlashOn
		p.drive(st.FlashOn)
	}
}

func (p *Pager) resolve(st *State, resp models.PageResponse, line, kind string) {
	p.logger.Printf("Page %s", resp)
	p.show(line)
	p.reporter.PageResponse(resp)
	p.idle(st)
	p.reporter.Emit(kind, resp)
}

func (p *Pager) idle(st *State) {
	st.Paging = models.PagingIdle
	st.FlashOn = false
	p.drive(false)
}

func (p *Pager) drive(on bool) {
	if on == p.driven {
		return
	}
	p.driven = on
	p.flash.Set(on)
	p.vibrate.Set(on)
}

func (p *Pager) show(line string) { showLine(p.display, p.logger, line) }
