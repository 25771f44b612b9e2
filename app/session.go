package app

import (
	"errors"
	"fmt"
	"log"
	"time"

	"pager/models"
)

var ErrNotConnected = errors.New("broker session not connected")

const (
	defaultJoinDelay  = 500 * time.Millisecond
	defaultRetryDelay = 2 * time.Second
	inboxSize         = 16
)

// Broker is the broker-session client the session manager drives.
type Broker interface {
	Connect(clientID string) error
	Subscribe(topic string, handler func(topic string, payload []byte)) error
	Publish(topic string, payload []byte) error
	IsConnected() bool
	Disconnect()
}

// Network associates the host with the wireless network and reports its
// hardware address.
type Network interface {
	Name() string
	Join() error
	Joined() bool
	HardwareAddr() (string, error)
}

// Display renders a short informational line.
type Display interface {
	Show(line string) error
}

// MessageHandler receives inbound broker messages on the scheduler loop.
type MessageHandler interface {
	HandleInbound(topic string, payload []byte)
}

type inbound struct {
	topic   string
	payload []byte
}

// Session owns network and broker connectivity. EnsureConnected blocks while
// it (re)establishes the session and retries forever.
type Session struct {
	broker  Broker
	network Network
	display Display
	connLED DigitalOutput
	logger  *log.Logger

	state    models.ConnectionState
	identity string

	handler MessageHandler
	inbox   chan inbound

	onConnect []func()

	joinDelay  time.Duration
	retryDelay time.Duration
	sleep      func(time.Duration)
}

type SessionOption func(*Session)

func WithConnectionLED(out DigitalOutput) SessionOption {
	return func(s *Session) { s.connLED = out }
}

func WithSessionLogger(l *log.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithSleep replaces the delay used between join and handshake attempts.
func WithSleep(sleep func(time.Duration)) SessionOption {
	return func(s *Session) { s.sleep = sleep }
}

func WithRetryDelays(join, handshake time.Duration) SessionOption {
	return func(s *Session) {
		s.joinDelay = join
		s.retryDelay = handshake
	}
}

func NewSession(broker Broker, network Network, display Display, opts ...SessionOption) *Session {
	s := &Session{
		broker:     broker,
		network:    network,
		display:    display,
		logger:     log.Default(),
		state:      models.Disconnected,
		inbox:      make(chan inbound, inboxSize),
		joinDelay:  defaultJoinDelay,
		retryDelay: defaultRetryDelay,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetHandler registers the receiver of inbound messages.
func (s *Session) SetHandler(h MessageHandler) { s.handler = h }

// OnConnect registers a hook run on the loop after every successful subscribe.
func (s *Session) OnConnect(fn func()) { s.onConnect = append(s.onConnect, fn) }

func (s *Session) State() models.ConnectionState { return s.state }

// Identity is the device hardware address, resolved on first network join.
func (s *Session) Identity() string { return s.identity }

// EnsureConnected returns immediately while the broker session is alive and
// otherwise runs the join and handshake sequence until it succeeds.
func (s *Session) EnsureConnected() {
	if s.state == models.BrokerConnected {
		if s.broker.IsConnected() {
			return
		}
		s.logger.Println("ERROR: broker session lost, reconnecting")
		s.setConnLED(false)
	}
	s.state = models.Disconnected

	if !s.network.Joined() || s.identity == "" {
		s.joinNetwork()
	}
	s.state = models.NetworkJoined

	s.connectBroker()
}

func (s *Session) joinNetwork() {
	s.state = models.NetworkJoining
	s.show(fmt.Sprintf("Connecting to %s", s.network.Name()))

	for {
		err := s.network.Join()
		if err == nil && s.network.Joined() {
			break
		}
		if err != nil {
			s.logger.Printf("Network join failed: %v", err)
		}
		s.sleep(s.joinDelay)
	}
	s.logger.Printf("Network %s joined", s.network.Name())

	if s.identity != "" {
		return
	}
	for {
		addr, err := s.network.HardwareAddr()
		if err == nil && addr != "" {
			s.identity = addr
			break
		}
		s.logger.Printf("ERROR: Failed to read hardware address: %v", err)
		s.sleep(s.joinDelay)
	}
	s.logger.Printf("Device identity is %s", s.identity)
}

func (s *Session) connectBroker() {
	s.state = models.BrokerConnecting
	for {
		s.show("Attempting broker connection...")
		err := s.handshake()
		if err == nil {
			break
		}
		s.setConnLED(false)
		s.logger.Printf("ERROR: Broker connection failed: %v, trying again in %v", err, s.retryDelay)
		s.sleep(s.retryDelay)
	}

	s.state = models.BrokerConnected
	s.setConnLED(true)
	s.show("Connected")
	s.logger.Printf("Broker session established as %s", s.identity)

	for _, fn := range s.onConnect {
		fn()
	}
}

func (s *Session) handshake() error {
	if err := s.broker.Connect(s.identity); err != nil {
		return err
	}
	for _, topic := range []string{s.identity, models.TopicGlobal} {
		if err := s.broker.Subscribe(topic, s.deliver); err != nil {
			s.broker.Disconnect()
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	return nil
}

// deliver queues a message from the broker client. It may run on the
// client's goroutine; handling happens in Dispatch.
func (s *Session) deliver(topic string, payload []byte) {
	msg := inbound{topic: topic, payload: payload}
	select {
	case s.inbox <- msg:
	default:
		// drop oldest if queue full
		select {
		case old := <-s.inbox:
			s.logger.Printf("ERROR: Inbound queue full, dropped message on topic '%s'", old.topic)
		default:
		}
		select {
		case s.inbox <- msg:
		default:
			s.logger.Printf("ERROR: Inbound queue full, dropped message on topic '%s'", topic)
		}
	}
}

// Dispatch hands every queued inbound message to the handler, in arrival order.
func (s *Session) Dispatch() {
	for {
		select {
		case msg := <-s.inbox:
			if s.handler == nil {
				s.logger.Printf("ERROR: No handler registered for topic '%s'", msg.topic)
				continue
			}
			s.handler.HandleInbound(msg.topic, msg.payload)
		default:
			return
		}
	}
}

// Publish sends payload if the session is up. Nothing is retried or replayed.
func (s *Session) Publish(topic string, payload []byte) error {
	if s.state != models.BrokerConnected || !s.broker.IsConnected() {
		return fmt.Errorf("publish to '%s': %w", topic, ErrNotConnected)
	}
	if err := s.broker.Publish(topic, payload); err != nil {
		return fmt.Errorf("publish to '%s': %w", topic, err)
	}
	return nil
}

// Close tears down the broker session.
func (s *Session) Close() {
	if s.state == models.BrokerConnected {
		s.broker.Disconnect()
	}
	s.state = models.Disconnected
	s.setConnLED(false)
}

func (s *Session) setConnLED(on bool) {
	if s.connLED != nil {
		s.connLED.Set(on)
	}
}

func (s *Session) show(line string) { showLine(s.display, s.logger, line) }
