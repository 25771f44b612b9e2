package app

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pager/models"
)

type routerFixture struct {
	st     *State
	pub    *fakePublisher
	flash  *fakeOutput
	router *Router
	logs   *bytes.Buffer
}

func newRouterFixture() *routerFixture {
	logger, logs := testLogger()
	clk := &fakeClock{}
	st := NewState()
	pub := &fakePublisher{id: "dev"}
	rep := NewReporter(pub, "Logan", clk, &fakeRecorder{}, logger)
	flash := &fakeOutput{}
	pager := NewPager(&fakeEdge{}, &fakeEdge{}, flash, &fakeOutput{}, rep, nil, logger)
	return &routerFixture{
		st:     st,
		pub:    pub,
		flash:  flash,
		router: NewRouter(st, pub.Identity, clk, rep, pager, nil, logger),
		logs:   logs,
	}
}

func TestRouterRegisterPublishesImmediately(t *testing.T) {
	f := newRouterFixture()
	f.router.HandleInbound(models.TopicGlobal, []byte("0"))

	require.Len(t, f.pub.published, 1)
	assert.Equal(t, models.TopicRegister, f.pub.published[0].topic)
	assert.True(t, f.st.RegistrationOwed, "the boot registration flag is left alone")
}

func TestRouterHealthSetsFlagOnly(t *testing.T) {
	f := newRouterFixture()
	f.router.HandleInbound("dev", []byte("1"))

	assert.True(t, f.st.HealthRequested)
	assert.Empty(t, f.pub.published)
}

func TestRouterPageAssertAndCancel(t *testing.T) {
	f := newRouterFixture()

	f.router.HandleInbound("dev", []byte("2"))
	assert.Equal(t, models.PagingActive, f.st.Paging)
	assert.True(t, f.flash.on)

	f.router.HandleInbound(models.TopicGlobal, []byte("3"))
	assert.Equal(t, models.PagingIdle, f.st.Paging)
	assert.False(t, f.flash.on)
	assert.Empty(t, f.pub.published)
}

func TestRouterIgnoresForeignTopics(t *testing.T) {
	f := newRouterFixture()
	f.router.HandleInbound("other-device", []byte("2"))
	f.router.HandleInbound("server/pager", []byte("1"))

	assert.Equal(t, *NewState(), *f.st)
}

func TestRouterUnrecognizedLeavesStateAlone(t *testing.T) {
	f := newRouterFixture()
	inputs := []string{"", "abc", "-1", "4", "17", "255", "65536", "2.5", " ", "0x02"}
	for i := -50; i < 50; i++ {
		if i < 0 || i > 3 {
			inputs = append(inputs, strconv.Itoa(i))
		}
	}

	for _, in := range inputs {
		f.router.HandleInbound("dev", []byte(in))
		assert.Equal(t, *NewState(), *f.st, "payload %q", in)
	}
	assert.Empty(t, f.pub.published)
	assert.Contains(t, f.logs.String(), "Bad client command")
}
