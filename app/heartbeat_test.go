package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pager/models"
)

func newTestHeartbeat() (*Heartbeat, *State, *fakePublisher, *fakeClock) {
	logger, _ := testLogger()
	clk := &fakeClock{}
	pub := &fakePublisher{id: "dev"}
	rep := NewReporter(pub, "Logan", clk, &fakeRecorder{}, logger)
	return NewHeartbeat(rep), NewState(), pub, clk
}

func TestHeartbeatRegistersOnceAfterWindow(t *testing.T) {
	hb, st, pub, clk := newTestHeartbeat()
	hb.Reset(st, clk.Now())

	clk.Advance(1000 * time.Millisecond)
	hb.Tick(st, clk.Now())
	assert.Empty(t, pub.published, "window is strictly greater than one second")

	clk.Advance(time.Millisecond)
	hb.Tick(st, clk.Now())
	require.Len(t, pub.published, 1)
	assert.Equal(t, models.TopicRegister, pub.published[0].topic)
	assert.JSONEq(t, `{"i":"dev","p":0,"n":"Logan","s":1,"r":0}`, pub.published[0].payload)
	assert.False(t, st.RegistrationOwed)

	for i := 0; i < 5; i++ {
		clk.Advance(2 * time.Second)
		hb.Tick(st, clk.Now())
	}
	assert.Len(t, pub.published, 1, "registration is not repeated")
}

func TestHeartbeatHealthIgnoresWindow(t *testing.T) {
	hb, st, pub, clk := newTestHeartbeat()
	hb.Reset(st, clk.Now())
	st.HealthRequested = true

	clk.Advance(10 * time.Millisecond)
	hb.Tick(st, clk.Now())

	require.Len(t, pub.published, 1)
	assert.Equal(t, models.TopicHealth, pub.published[0].topic)
	assert.JSONEq(t, `{"i":"dev","p":1}`, pub.published[0].payload)
	assert.False(t, st.HealthRequested)
	assert.True(t, st.RegistrationOwed)
}

func TestHeartbeatRegistrationNotReplayed(t *testing.T) {
	hb, st, pub, clk := newTestHeartbeat()
	pub.down = true

	clk.Advance(2 * time.Second)
	hb.Tick(st, clk.Now())
	assert.False(t, st.RegistrationOwed, "best effort: the flag clears even if the publish is dropped")

	pub.down = false
	clk.Advance(2 * time.Second)
	hb.Tick(st, clk.Now())
	assert.Empty(t, pub.published)
}
