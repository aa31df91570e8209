package transport

import "net"

// Pipe returns two in-process Conns plumbed directly into each other,
// with no network, no goroutine scheduling surprises beyond net.Pipe's
// own synchronous semantics. Tests use this to drive two tokenchannel.Channel
// or router instances against each other without a real socket.
func Pipe() (a, b Conn) {
	ca, cb := net.Pipe()
	return newStreamConn(ca, "pipe-a"), newStreamConn(cb, "pipe-b")
}
