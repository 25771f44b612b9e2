package app

import (
	"log"
	"time"

	"github.com/google/uuid"

	"pager/models"
	"pager/utils"
)

// Publisher is the outbound side of the broker session.
type Publisher interface {
	Publish(topic string, payload []byte) error
	Identity() string
}

// EventRecorder receives device events. Implementations must not block.
type EventRecorder interface {
	Record(ev models.Event)
}

// Recorders fans an event out to several recorders.
type Recorders []EventRecorder

func (rs Recorders) Record(ev models.Event) {
	for _, r := range rs {
		r.Record(ev)
	}
}

// Reporter builds and publishes the badge's outbound messages. Delivery is
// best effort: failures are logged and the message is dropped.
type Reporter struct {
	pub      Publisher
	name     string
	clock    Clock
	recorder EventRecorder
	logger   *log.Logger
	session  string
}

func NewReporter(pub Publisher, name string, clock Clock, recorder EventRecorder, logger *log.Logger) *Reporter {
	if logger == nil {
		logger = log.Default()
	}
	return &Reporter{
		pub:      pub,
		name:     name,
		clock:    clock,
		recorder: recorder,
		logger:   logger,
		session:  uuid.NewString(),
	}
}

func (r *Reporter) Register() {
	payload, err := utils.EncodeRegistration(r.pub.Identity(), r.name)
	if err != nil {
		r.logger.Printf("ERROR: Marshal registration error: %v", err)
		return
	}
	if r.publish(models.TopicRegister, payload) {
		r.Emit(models.EventRegistered, models.ResponseNone)
	}
}

func (r *Reporter) Health() {
	payload, err := utils.EncodeHealth(r.pub.Identity())
	if err != nil {
		r.logger.Printf("ERROR: Marshal health error: %v", err)
		return
	}
	if r.publish(models.TopicHealth, payload) {
		r.Emit(models.EventHealth, models.ResponseNone)
	}
}

func (r *Reporter) PageResponse(resp models.PageResponse) {
	payload, err := utils.EncodePageResponse(r.pub.Identity(), resp)
	if err != nil {
		r.logger.Printf("ERROR: Marshal page response error: %v", err)
		return
	}
	r.publish(models.TopicPager, payload)
}

// Emit reports an event to the recorder, if any.
func (r *Reporter) Emit(kind string, resp models.PageResponse) {
	if r.recorder == nil {
		return
	}
	r.recorder.Record(models.Event{
		Session:  r.session,
		DeviceID: r.pub.Identity(),
		Kind:     kind,
		Response: resp,
		Uptime:   r.clock.Now(),
		At:       time.Now(),
	})
}

func (r *Reporter) publish(topic string, payload []byte) bool {
	if err := r.pub.Publish(topic, payload); err != nil {
		r.logger.Printf("ERROR: Failed to publish to MQTT topic '%s': %v", topic, err)
		return false
	}
	r.logger.Printf("Published message to topic: %s", topic)
	return true
}
