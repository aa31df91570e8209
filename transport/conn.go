// Package transport carries mcwire.Message envelopes between two friends,
// or between a friend and a relay, without caring which wire carries them
// (§9 treats the transport as a capability, not a fixed protocol). Three
// concrete Conn implementations are provided: an in-process pipe for tests,
// a raw TCP connection, and a websocket tunnel for relay-friendly
// deployments.
package transport

import (
	"io"

	"github.com/creditmesh/corenet/mcwire"
)

// Conn is the minimum capability a transport must offer: frame and
// deliver mcwire.Message values in both directions. Implementations are
// not required to be safe for concurrent use by multiple readers or
// multiple writers, but MUST be safe for one concurrent reader and one
// concurrent writer at the same time — the same contract net.Conn makes,
// which Link relies on.
type Conn interface {
	ReadMessage() (mcwire.Message, error)
	WriteMessage(msg mcwire.Message) error
	Close() error

	// RemoteAddr identifies the peer at the other end, for logging.
	RemoteAddr() string
}

// streamConn adapts any io.ReadWriteCloser carrying a raw byte stream
// (a TCP socket, an in-memory pipe) into a Conn by running mcwire's own
// framing directly over it.
type streamConn struct {
	rwc        io.ReadWriteCloser
	remoteAddr string
}

func newStreamConn(rwc io.ReadWriteCloser, remoteAddr string) *streamConn {
	return &streamConn{rwc: rwc, remoteAddr: remoteAddr}
}

func (c *streamConn) ReadMessage() (mcwire.Message, error) {
	return mcwire.ReadMessage(c.rwc)
}

func (c *streamConn) WriteMessage(msg mcwire.Message) error {
	_, err := mcwire.WriteMessage(c.rwc, msg)
	return err
}

func (c *streamConn) Close() error { return c.rwc.Close() }

func (c *streamConn) RemoteAddr() string { return c.remoteAddr }
