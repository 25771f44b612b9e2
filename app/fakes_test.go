package app

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"pager/models"
)

type fakeClock struct{ now time.Duration }

func (c *fakeClock) Now() time.Duration      { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now += d }

type fakeLevel struct{ on bool }

func (l *fakeLevel) Get() bool { return l.on }

type fakeOutput struct {
	on     bool
	writes int
}

func (o *fakeOutput) Set(on bool) { o.on = on; o.writes++ }

type fakeDisplay struct{ lines []string }

func (d *fakeDisplay) Show(line string) error {
	d.lines = append(d.lines, line)
	return nil
}

func (d *fakeDisplay) Last() string {
	if len(d.lines) == 0 {
		return ""
	}
	return d.lines[len(d.lines)-1]
}

type fakeNetwork struct {
	joined    bool
	failJoins int
	joins     int
	addr      string
}

func (n *fakeNetwork) Name() string { return "eduroam" }
func (n *fakeNetwork) Joined() bool { return n.joined }
func (n *fakeNetwork) Join() error {
	n.joins++
	if n.failJoins > 0 {
		n.failJoins--
		return errors.New("association rejected")
	}
	n.joined = true
	return nil
}
func (n *fakeNetwork) HardwareAddr() (string, error) { return n.addr, nil }

type publishedMsg struct {
	topic   string
	payload string
}

type fakeBroker struct {
	mu           sync.Mutex
	connected    bool
	failConnects int
	connects     []string
	subscribed   []string
	handlers     map[string]func(string, []byte)
	published    []publishedMsg
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{handlers: map[string]func(string, []byte){}}
}

func (b *fakeBroker) Connect(id string) error {
	b.connects = append(b.connects, id)
	if b.failConnects > 0 {
		b.failConnects--
		return errors.New("rc=-2")
	}
	b.connected = true
	return nil
}

func (b *fakeBroker) Subscribe(topic string, h func(string, []byte)) error {
	b.subscribed = append(b.subscribed, topic)
	b.handlers[topic] = h
	return nil
}

func (b *fakeBroker) Publish(topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, publishedMsg{topic: topic, payload: string(payload)})
	return nil
}

func (b *fakeBroker) IsConnected() bool { return b.connected }
func (b *fakeBroker) Disconnect()       { b.connected = false }

// push simulates the broker delivering a message on its own goroutine.
func (b *fakeBroker) push(topic, payload string) {
	b.handlers[topic](topic, []byte(payload))
}

func (b *fakeBroker) on(topic string) []publishedMsg {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []publishedMsg
	for _, m := range b.published {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
}

type fakeRecorder struct{ events []models.Event }

func (r *fakeRecorder) Record(ev models.Event) { r.events = append(r.events, ev) }

func (r *fakeRecorder) kinds() []string {
	var out []string
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

// fakePublisher stands in for the session when testing components alone.
type fakePublisher struct {
	id        string
	down      bool
	published []publishedMsg
}

func (p *fakePublisher) Identity() string { return p.id }
func (p *fakePublisher) Publish(topic string, payload []byte) error {
	if p.down {
		return ErrNotConnected
	}
	p.published = append(p.published, publishedMsg{topic: topic, payload: string(payload)})
	return nil
}

type fakeEdge struct {
	pending bool
	resets  int
}

func (e *fakeEdge) Poll() bool {
	p := e.pending
	e.pending = false
	return p
}

func (e *fakeEdge) Reset() {
	e.pending = false
	e.resets++
}

func testLogger() (*log.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return log.New(buf, "", 0), buf
}

func countLines(buf *bytes.Buffer, substr string) int {
	n := 0
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}
