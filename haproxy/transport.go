package haproxy

import (
	stderrors "errors"
	"io"
	"net"
	"time"

	"github.com/skillsenselab/hostagent/errors"
)

// Transport performs one request/response exchange with an admin endpoint.
type Transport interface {
	Send(command string) (string, error)
}

// socketTransport opens exactly one connection per command. The admin
// socket serves commands single-threaded per connection, so there is no
// pooling and no pipelining.
type socketTransport struct {
	addr    AddressSpec
	timeout time.Duration
}

// NewTransport creates a Transport for the given address. Every Send dials
// a fresh connection and applies timeout to the whole exchange.
func NewTransport(addr AddressSpec, timeout time.Duration) Transport {
	return &socketTransport{addr: addr, timeout: timeout}
}

// Send writes command followed by a newline, reads to peer EOF, and closes
// the connection. A deadline overrun at any stage yields a timeout error;
// any other transport failure yields a connection error.
func (t *socketTransport) Send(command string) (string, error) {
	network, address := t.addr.dialArgs()

	conn, err := net.DialTimeout(network, address, t.timeout)
	if err != nil {
		return "", t.classify("dial", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(t.timeout)); err != nil {
		return "", errors.Connection(t.addr.String(), err)
	}

	if _, err := conn.Write([]byte(command + "\n")); err != nil {
		return "", t.classify("write", err)
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		return "", t.classify("read", err)
	}

	return string(data), nil
}

// classify distinguishes deadline overruns from other transport failures.
func (t *socketTransport) classify(op string, err error) error {
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Timeout(op+" "+t.addr.String(), err)
	}
	return errors.Connection(t.addr.String(), err)
}
