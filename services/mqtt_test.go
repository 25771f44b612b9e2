package services

import (
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t fakeToken) Error() error { return t.err }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

// fakeClient implements mqtt.Client without a network.
type fakeClient struct {
	opts       *mqtt.ClientOptions
	connected  bool
	connectErr error
	handlers   map[string]mqtt.MessageHandler
	published  map[string][]byte
}

func (c *fakeClient) IsConnected() bool      { return c.connected }
func (c *fakeClient) IsConnectionOpen() bool { return c.connected }
func (c *fakeClient) Disconnect(uint)        { c.connected = false }

func (c *fakeClient) AddRoute(string, mqtt.MessageHandler) {}
func (c *fakeClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.NewOptionsReader(c.opts)
}
func (c *fakeClient) Connect() mqtt.Token {
	if c.connectErr == nil {
		c.connected = true
	}
	return fakeToken{err: c.connectErr}
}
func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	c.published[topic] = payload.([]byte)
	return fakeToken{}
}
func (c *fakeClient) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	c.handlers[topic] = cb
	return fakeToken{}
}
func (c *fakeClient) SubscribeMultiple(map[string]byte, mqtt.MessageHandler) mqtt.Token {
	return fakeToken{}
}
func (c *fakeClient) Unsubscribe(...string) mqtt.Token { return fakeToken{} }

func newTestService(connectErr error) (*MqttService, *fakeClient) {
	fc := &fakeClient{
		connectErr: connectErr,
		handlers:   map[string]mqtt.MessageHandler{},
		published:  map[string][]byte{},
	}
	s := NewMqttService("tcp://127.0.0.1:1883", "", "")
	s.newClient = func(o *mqtt.ClientOptions) mqtt.Client {
		fc.opts = o
		return fc
	}
	return s, fc
}

func TestMqttServiceConnectUsesIdentity(t *testing.T) {
	s, fc := newTestService(nil)

	require.NoError(t, s.Connect("A0:A3:B3:2D:C6:2C"))
	assert.True(t, s.IsConnected())
	assert.Equal(t, "A0:A3:B3:2D:C6:2C", fc.opts.ClientID)
	assert.False(t, fc.opts.AutoReconnect)
}

func TestMqttServiceConnectFailure(t *testing.T) {
	s, _ := newTestService(errors.New("not authorized"))

	err := s.Connect("dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authorized")
	assert.False(t, s.IsConnected())
}

func TestMqttServiceSubscribeDelivers(t *testing.T) {
	s, fc := newTestService(nil)
	require.NoError(t, s.Connect("dev"))

	var gotTopic string
	var gotPayload []byte
	require.NoError(t, s.Subscribe("client/global", func(topic string, payload []byte) {
		gotTopic, gotPayload = topic, payload
	}))
	assert.Equal(t, []string{"client/global"}, s.subscribedTopics())

	fc.handlers["client/global"](fc, fakeMessage{topic: "client/global", payload: []byte("2")})
	assert.Equal(t, "client/global", gotTopic)
	assert.Equal(t, []byte("2"), gotPayload)
}

func TestMqttServicePublish(t *testing.T) {
	s, fc := newTestService(nil)
	assert.Error(t, s.Publish("server/health", []byte("{}")))

	require.NoError(t, s.Connect("dev"))
	require.NoError(t, s.Publish("server/health", []byte(`{"i":"dev","p":1}`)))
	assert.Equal(t, []byte(`{"i":"dev","p":1}`), fc.published["server/health"])

	s.Disconnect()
	assert.False(t, s.IsConnected())
	assert.Error(t, s.Publish("server/health", []byte("{}")))
}
