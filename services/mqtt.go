package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout = 5 * time.Second
	opTimeout      = 3 * time.Second
)

// MqttService is the badge's broker-session client. Reconnection is left to
// the caller: the client never reconnects on its own, so a lost session shows
// up as IsConnected returning false.
type MqttService struct {
	brokerURL string
	user      string
	password  string

	mu     sync.Mutex
	client mqtt.Client
	topics map[string]byte

	newClient func(*mqtt.ClientOptions) mqtt.Client
}

func NewMqttService(brokerURL, user, password string) *MqttService {
	return &MqttService{
		brokerURL: brokerURL,
		user:      user,
		password:  password,
		topics:    make(map[string]byte),
		newClient: mqtt.NewClient,
	}
}

func (s *MqttService) options(id string) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().AddBroker(s.brokerURL).SetClientID(id).SetOrderMatters(true)
	opts.SetKeepAlive(15 * time.Second)
	opts.SetPingTimeout(5 * time.Second)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetCleanSession(true)

	opts.SetUsername(s.user)
	opts.SetPassword(s.password)

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("ERROR: MQTT connection lost: %v", err)
	})
	return opts
}

// Connect performs the broker handshake using id as the client id.
func (s *MqttService) Connect(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
	s.client = s.newClient(s.options(id))
	s.topics = make(map[string]byte)

	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("failed to connect MQTT client: timed out after %v", connectTimeout)
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to connect MQTT client: %w", token.Error())
	}
	log.Println("MQTT Client Connected!")
	return nil
}

func (s *MqttService) Subscribe(topic string, handler func(topic string, payload []byte)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return fmt.Errorf("MQTT client not connected, cannot subscribe")
	}
	token := s.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(opTimeout) {
		return fmt.Errorf("subscribe to topic '%s' timed out", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic '%s': %w", topic, token.Error())
	}
	s.topics[topic] = 0
	log.Printf("Subscribed to topic: '%s' (QoS %d)\n", topic, 0)
	return nil
}

func (s *MqttService) Publish(topic string, payload []byte) error {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()

	if client == nil || !client.IsConnectionOpen() {
		return fmt.Errorf("MQTT client not connected, cannot publish")
	}
	token := client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(opTimeout) {
		return fmt.Errorf("publish to topic '%s' timed out", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to publish message to topic '%s': %w", topic, token.Error())
	}
	return nil
}

// IsConnected reports broker-level liveness; it turns false once the keepalive
// ping fails.
func (s *MqttService) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil && s.client.IsConnectionOpen()
}

func (s *MqttService) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return
	}
	log.Println("Stopping MQTT client...")
	if s.client.IsConnected() {
		s.client.Disconnect(250)
	}
	s.client = nil
	s.topics = make(map[string]byte)
}

func (s *MqttService) subscribedTopics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.topics))
	for t := range s.topics {
		out = append(out, t)
	}
	return out
}
