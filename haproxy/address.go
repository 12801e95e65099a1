package haproxy

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/skillsenselab/hostagent/errors"
)

// tcpPrefix marks an address spec as a TCP endpoint. Anything else is a
// filesystem path to a Unix stream socket.
const tcpPrefix = "ipv4@"

// Network is the transport kind an AddressSpec resolves to.
type Network string

const (
	NetworkUnix Network = "unix"
	NetworkTCP  Network = "tcp"
)

// AddressSpec is a parsed, immutable admin endpoint address.
type AddressSpec struct {
	network Network
	path    string
	host    string
	port    int
}

// ParseAddress parses an address spec string. `ipv4@host:port` yields a
// TCP address (split on the last colon, so the host may contain colons of
// its own); any other non-empty string is taken verbatim as a Unix socket
// path. Pure, no I/O.
func ParseAddress(spec string) (AddressSpec, error) {
	if spec == "" {
		return AddressSpec{}, errors.Parse("address spec is empty")
	}

	if !strings.HasPrefix(spec, tcpPrefix) {
		return AddressSpec{network: NetworkUnix, path: spec}, nil
	}

	rest := spec[len(tcpPrefix):]
	idx := strings.LastIndex(rest, ":")
	if idx <= 0 {
		return AddressSpec{}, errors.Parse(fmt.Sprintf("tcp address %q must be host:port", spec))
	}

	host := rest[:idx]
	port, err := strconv.Atoi(rest[idx+1:])
	if err != nil {
		return AddressSpec{}, errors.Parse(fmt.Sprintf("tcp address %q has a non-numeric port", spec))
	}
	if port < 1 || port > 65535 {
		return AddressSpec{}, errors.Parse(fmt.Sprintf("tcp address %q port must be in [1,65535]", spec))
	}

	return AddressSpec{network: NetworkTCP, host: host, port: port}, nil
}

// Network returns the transport kind.
func (a AddressSpec) Network() Network { return a.network }

// Host returns the TCP host. Empty for Unix addresses.
func (a AddressSpec) Host() string { return a.host }

// Port returns the TCP port. Zero for Unix addresses.
func (a AddressSpec) Port() int { return a.port }

// Path returns the Unix socket path. Empty for TCP addresses.
func (a AddressSpec) Path() string { return a.path }

// String renders the address in its original grammar.
func (a AddressSpec) String() string {
	if a.network == NetworkTCP {
		return fmt.Sprintf("%s%s:%d", tcpPrefix, a.host, a.port)
	}
	return a.path
}

// dialArgs returns the arguments for net.Dial.
func (a AddressSpec) dialArgs() (network, address string) {
	if a.network == NetworkTCP {
		return "tcp", fmt.Sprintf("%s:%d", a.host, a.port)
	}
	return "unix", a.path
}

// Validate checks that the address is usable. For Unix addresses the path
// must exist and be a socket special file; TCP validation is deferred to
// the first connection attempt.
func (a AddressSpec) Validate() error {
	if a.network != NetworkUnix {
		return nil
	}

	info, err := os.Stat(a.path)
	if err != nil {
		return errors.Connection(a.path, err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		return errors.Connection(a.path, fmt.Errorf("path is not a socket"))
	}
	return nil
}
