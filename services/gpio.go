package services

import (
	"fmt"
	"log"
	"sync"

	gpiod "github.com/warthog618/go-gpiocdev"
)

// line is the subset of *gpiod.Line the badge uses.
type line interface {
	Value() (int, error)
	SetValue(value int) error
	Close() error
}

// OutputLine is a GPIO output driven as a binary actuator.
type OutputLine struct {
	name string
	line line
}

func (o *OutputLine) Set(on bool) {
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		log.Printf("ERROR: set output %s: %v", o.name, err)
	}
}

// InputLine is a GPIO button input. A read error reads as released.
type InputLine struct {
	name      string
	line      line
	activeLow bool
}

func (i *InputLine) Get() bool {
	v, err := i.line.Value()
	if err != nil {
		log.Printf("ERROR: read input %s: %v", i.name, err)
		return false
	}
	level := v != 0
	if i.activeLow {
		return !level
	}
	return level
}

// GPIO owns the chip and every line requested from it.
type GPIO struct {
	mu    sync.Mutex
	chip  *gpiod.Chip
	lines []line
}

func OpenGPIO(chipName string) (*GPIO, error) {
	chip, err := gpiod.NewChip(chipName, gpiod.WithConsumer("pager"))
	if err != nil {
		return nil, fmt.Errorf("open chip %s: %w", chipName, err)
	}
	return &GPIO{chip: chip}, nil
}

// Output requests pin as an output, initially off.
func (g *GPIO) Output(name string, pin int) (*OutputLine, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, err := g.chip.RequestLine(pin, gpiod.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	g.lines = append(g.lines, l)
	return &OutputLine{name: name, line: l}, nil
}

// Input requests pin as an input. Active-low buttons get the internal pull-up.
func (g *GPIO) Input(name string, pin int, activeLow bool) (*InputLine, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	opts := []gpiod.LineReqOption{gpiod.AsInput}
	if activeLow {
		opts = append(opts, gpiod.WithPullUp)
	}
	l, err := g.chip.RequestLine(pin, opts...)
	if err != nil {
		return nil, fmt.Errorf("request input pin %d: %w", pin, err)
	}
	g.lines = append(g.lines, l)
	return &InputLine{name: name, line: l, activeLow: activeLow}, nil
}

func (g *GPIO) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var errs []error
	for _, l := range g.lines {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	g.lines = nil

	if g.chip != nil {
		if err := g.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		g.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}
