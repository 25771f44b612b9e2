package models

import "time"

// Outbound payloads use single letter keys to keep frames small.

type RegistrationPayload struct {
	ID       string       `json:"i"`
	LastPing uint8        `json:"p"`
	Name     string       `json:"n"`
	Status   uint8        `json:"s"`
	Response PageResponse `json:"r"`
}

type HealthPayload struct {
	ID   string `json:"i"`
	Ping uint8  `json:"p"`
}

type PageResponsePayload struct {
	ID       string       `json:"i"`
	Response PageResponse `json:"r"`
}

// Event kinds mirrored to recorders.
const (
	EventConnected     = "connected"
	EventRegistered    = "registered"
	EventHealth        = "health"
	EventPageStarted   = "page.started"
	EventPageAccepted  = "page.accepted"
	EventPageRefused   = "page.refused"
	EventPageCancelled = "page.cancelled"
)

// Event is a device-side occurrence reported to local recorders.
type Event struct {
	Session  string        `json:"session"`
	DeviceID string        `json:"device_id"`
	Kind     string        `json:"kind"`
	Response PageResponse  `json:"response,omitempty"`
	Uptime   time.Duration `json:"uptime"`
	At       time.Time     `json:"at"`
}
