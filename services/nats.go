package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/nats-io/nats.go"

	"pager/models"
)

// InitNats connects to the local NATS server used for event mirroring. The
// connection retries in the background if the server is not up yet.
func InitNats(url string) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	opts := []nats.Option{
		nats.Name("pager-badge"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect error: %w", err)
	}
	return nc, nil
}

// natsPublisher is the subset of *nats.Conn the mirror uses.
type natsPublisher interface {
	Publish(subj string, data []byte) error
}

// NatsMirror republishes device events on pager.<device>.<kind>.
// nats.Conn buffers publishes, so Record does not block on the network.
type NatsMirror struct {
	nc natsPublisher
}

func NewNatsMirror(nc natsPublisher) *NatsMirror {
	return &NatsMirror{nc: nc}
}

func EventSubject(ev models.Event) string {
	device := strings.NewReplacer(":", "", ".", "_").Replace(ev.DeviceID)
	if device == "" {
		device = "unknown"
	}
	return fmt.Sprintf("pager.%s.%s", device, ev.Kind)
}

func (m *NatsMirror) Record(ev models.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("ERROR: Marshal event data error: %v", err)
		return
	}
	subject := EventSubject(ev)
	if err := m.nc.Publish(subject, data); err != nil {
		log.Printf("ERROR: Failed to publish to NATS subject '%s': %v\n", subject, err)
	}
}
