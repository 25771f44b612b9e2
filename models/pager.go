package models

// ConnectionState is the session manager's view of network and broker connectivity.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	NetworkJoining
	NetworkJoined
	BrokerConnecting
	BrokerConnected
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case NetworkJoining:
		return "network-joining"
	case NetworkJoined:
		return "network-joined"
	case BrokerConnecting:
		return "broker-connecting"
	case BrokerConnected:
		return "broker-connected"
	default:
		return "unknown"
	}
}

// CommandCode is an inbound directive pushed by the broker as an integer literal.
type CommandCode int

const (
	Unrecognized CommandCode = -1

	CommandRegister    CommandCode = 0
	CommandHealthCheck CommandCode = 1
	CommandPageAssert  CommandCode = 2
	CommandPageCancel  CommandCode = 3
)

// Valid reports whether c is one of the four defined commands.
func (c CommandCode) Valid() bool {
	return c >= CommandRegister && c <= CommandPageCancel
}

func (c CommandCode) String() string {
	switch c {
	case CommandRegister:
		return "register"
	case CommandHealthCheck:
		return "health-check"
	case CommandPageAssert:
		return "page-assert"
	case CommandPageCancel:
		return "page-cancel"
	default:
		return "unrecognized"
	}
}

type PagingState int

const (
	PagingIdle PagingState = iota
	PagingActive
)

func (s PagingState) String() string {
	if s == PagingActive {
		return "active"
	}
	return "idle"
}

// PageResponse is the wearer's answer to a page, sent as the "r" field.
type PageResponse uint8

const (
	ResponseNone   PageResponse = 0
	ResponseAccept PageResponse = 1
	ResponseRefuse PageResponse = 2
)

func (r PageResponse) String() string {
	switch r {
	case ResponseAccept:
		return "accepted"
	case ResponseRefuse:
		return "refused"
	default:
		return "none"
	}
}

// Broker topics.
const (
	TopicGlobal   = "client/global"
	TopicRegister = "server/register"
	TopicHealth   = "server/health"
	TopicPager    = "server/pager"
)
