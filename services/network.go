package services

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

var ErrNoHardwareAddr = errors.New("interface has no hardware address")

// NetInterface treats a host network interface as the badge's wireless link.
// Association itself is done by the OS supplicant; Join waits for the link to
// be up with an address assigned.
type NetInterface struct {
	name   string
	lookup func(name string) (*net.Interface, error)
	addrs  func(ifi *net.Interface) ([]net.Addr, error)
}

func NewNetInterface(name string) *NetInterface {
	return &NetInterface{
		name:   name,
		lookup: net.InterfaceByName,
		addrs:  func(ifi *net.Interface) ([]net.Addr, error) { return ifi.Addrs() },
	}
}

func (n *NetInterface) Name() string { return n.name }

func (n *NetInterface) Join() error {
	ifi, err := n.lookup(n.name)
	if err != nil {
		return fmt.Errorf("lookup interface %s: %w", n.name, err)
	}
	if ifi.Flags&net.FlagUp == 0 {
		return fmt.Errorf("interface %s is down", n.name)
	}
	addrs, err := n.addrs(ifi)
	if err != nil {
		return fmt.Errorf("read addresses of %s: %w", n.name, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("interface %s has no address yet", n.name)
	}
	return nil
}

// Joined re-runs the interface probe; an up interface with an address is
// the only liveness signal the host exposes.
func (n *NetInterface) Joined() bool { return n.Join() == nil }

// HardwareAddr returns the MAC address in upper-case colon notation.
func (n *NetInterface) HardwareAddr() (string, error) {
	ifi, err := n.lookup(n.name)
	if err != nil {
		return "", fmt.Errorf("lookup interface %s: %w", n.name, err)
	}
	if len(ifi.HardwareAddr) == 0 {
		return "", ErrNoHardwareAddr
	}
	return strings.ToUpper(ifi.HardwareAddr.String()), nil
}
