package app

import (
	"context"
	"errors"
	"log"
	"time"

	"pager/models"
)

// Hardware is the set of actuators and inputs the badge drives.
type Hardware struct {
	Flash   DigitalOutput
	Vibrate DigitalOutput
	ConnLED DigitalOutput
	Accept  DigitalInput
	Refuse  DigitalInput
}

type BadgeConfig struct {
	Name     string
	Debounce time.Duration
	Logger   *log.Logger
	Recorder EventRecorder
	// Sleep overrides the retry delay in the session manager.
	Sleep func(time.Duration)
}

// Badge wires the components together and runs the scheduler loop.
type Badge struct {
	state     *State
	clock     Clock
	session   *Session
	router    *Router
	pager     *Pager
	heartbeat *Heartbeat
	reporter  *Reporter
	logger    *log.Logger
}

func NewBadge(cfg BadgeConfig, clock Clock, broker Broker, network Network, display Display, hw Hardware) (*Badge, error) {
	if broker == nil || network == nil {
		return nil, errors.New("broker and network cannot be nil")
	}
	if hw.Flash == nil || hw.Vibrate == nil || hw.Accept == nil || hw.Refuse == nil {
		return nil, errors.New("alert outputs and buttons cannot be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	opts := []SessionOption{WithSessionLogger(logger)}
	if hw.ConnLED != nil {
		opts = append(opts, WithConnectionLED(hw.ConnLED))
	}
	if cfg.Sleep != nil {
		opts = append(opts, WithSleep(cfg.Sleep))
	}

	b := &Badge{
		state:  NewState(),
		clock:  clock,
		logger: logger,
	}
	b.session = NewSession(broker, network, display, opts...)
	b.reporter = NewReporter(b.session, cfg.Name, clock, cfg.Recorder, logger)

	accept := NewDebouncer(hw.Accept, clock, cfg.Debounce)
	refuse := NewDebouncer(hw.Refuse, clock, cfg.Debounce)
	b.pager = NewPager(accept, refuse, hw.Flash, hw.Vibrate, b.reporter, display, logger)
	b.heartbeat = NewHeartbeat(b.reporter)
	b.router = NewRouter(b.state, b.session.Identity, clock, b.reporter, b.pager, display, logger)

	b.session.SetHandler(b.router)
	b.session.OnConnect(b.onConnect)
	return b, nil
}

func (b *Badge) onConnect() {
	b.heartbeat.Reset(b.state, b.clock.Now())
	b.reporter.Emit(models.EventConnected, models.ResponseNone)
}

// Tick runs one scheduler pass. Inbound messages are handled before paging
// and heartbeat so a cancel deasserts the outputs in the tick it arrives.
func (b *Badge) Tick() {
	b.session.EnsureConnected()
	b.session.Dispatch()

	now := b.clock.Now()
	b.pager.Tick(b.state, now)
	b.heartbeat.Tick(b.state, now)
}

// Run ticks until ctx is cancelled, then forces the outputs off and closes
// the broker session.
func (b *Badge) Run(ctx context.Context) error {
	defer b.shutdown()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		b.Tick()
		// yield between passes; the loop has no fixed frequency
		time.Sleep(time.Millisecond)
	}
}

func (b *Badge) shutdown() {
	b.logger.Println("Badge stopping...")
	b.pager.Cancel(b.state)
	b.session.Close()
}

func (b *Badge) State() State      { return *b.state }
func (b *Badge) Session() *Session { return b.session }
