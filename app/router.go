package app

import (
	"fmt"
	"log"

	"pager/models"
	"pager/utils"
)

// Router interprets inbound commands and applies them to the badge state.
// Apart from an explicit Register, it never publishes; replies go out on the
// next heartbeat tick.
type Router struct {
	st       *State
	identity func() string
	clock    Clock
	reporter *Reporter
	pager    *Pager
	display  Display
	logger   *log.Logger
}

func NewRouter(st *State, identity func() string, clock Clock, reporter *Reporter, pager *Pager, display Display, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Default()
	}
	return &Router{
		st:       st,
		identity: identity,
		clock:    clock,
		reporter: reporter,
		pager:    pager,
		display:  display,
		logger:   logger,
	}
}

func (r *Router) HandleInbound(topic string, payload []byte) {
	r.logger.Printf("Message arrived on topic: %s. Message: %q", topic, payload)
	r.show(fmt.Sprintf("Message arrived on topic: %s", topic))

	if topic != r.identity() && topic != models.TopicGlobal {
		return
	}

	switch cmd := utils.DecodeCommand(payload); cmd {
	case models.CommandRegister:
		r.logger.Println("Register request made by server")
		r.reporter.Register()
	case models.CommandHealthCheck:
		r.logger.Println("Health request made by server")
		r.st.HealthRequested = true
	case models.CommandPageAssert:
		r.logger.Println("Page request made by server")
		r.pager.Assert(r.st, r.clock.Now())
	case models.CommandPageCancel:
		r.logger.Println("Cancel request made by server")
		r.pager.Cancel(r.st)
	default:
		r.logger.Printf("ERROR: Bad client command %q on topic '%s'", payload, topic)
	}
}

func (r *Router) show(line string) { showLine(r.display, r.logger, line) }
